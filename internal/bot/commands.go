package bot

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Slash command names.
const (
	CommandFetch          = "fetch"
	CommandTrending       = "trending"
	CommandScript         = "script"
	CommandExecutors      = "executors"
	CommandRscriptsFetch  = "rscripts_fetch"
	CommandRscriptsByUser = "rscripts_by_user"
)

// Sources selectable with the "source" option.
const (
	SourceScriptBlox = "scriptblox"
	SourceRscripts   = "rscripts"
)

// optionArgs maps slash option names to the upstream parameter they carry.
// Discord requires lower-case option names.
var optionArgs = map[string]string{
	"sort_by":       "sortBy",
	"place_id":      "placeId",
	"no_key_system": "noKeySystem",
	"mobile_only":   "mobileOnly",
	"verified_only": "verifiedOnly",
	"order_by":      "orderBy",
}

func choices(values ...string) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(values))
	for _, v := range values {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	return out
}

func stringOption(name, desc string, required bool, values ...string) *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: desc,
		Required:    required,
	}
	if len(values) > 0 {
		opt.Choices = choices(values...)
	}
	return opt
}

func boolOption(name, desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        name,
		Description: desc,
	}
}

func pageOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "page",
		Description: "Page to start from",
	}
}

func modeOption() *discordgo.ApplicationCommandOption {
	return stringOption("mode", "Free or paid scripts", false, "free", "paid")
}

func sourceOption() *discordgo.ApplicationCommandOption {
	return stringOption("source", "Site to query", false, SourceScriptBlox, SourceRscripts)
}

func scriptBloxFilterOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		boolOption("verified", "Only verified scripts"),
		boolOption("patched", "Patched scripts"),
		boolOption("key", "Scripts with a key system"),
		boolOption("universal", "Universal scripts"),
		stringOption("sort_by", "Sort field", false, "views", "likeCount", "dislikeCount", "createdAt", "updatedAt"),
		stringOption("order", "Sort order", false, "asc", "desc"),
		stringOption("owner", "Uploader username", false),
		stringOption("place_id", "Roblox place id", false),
	}
}

func rscriptsFilterOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		boolOption("no_key_system", "Scripts without a key system"),
		boolOption("mobile_only", "Mobile ready scripts"),
		boolOption("verified_only", "Only verified uploaders"),
		boolOption("unpatched", "Only working scripts"),
		stringOption("order_by", "Sort field", false, "date", "views", "likes"),
		stringOption("sort", "Sort order", false, "asc", "desc"),
	}
}

// slashCommands returns the application commands registered on ready.
func slashCommands() []*discordgo.ApplicationCommand {
	searchOpts := []*discordgo.ApplicationCommandOption{
		stringOption("query", "What to search for", true),
		modeOption(),
		sourceOption(),
		pageOption(),
		boolOption("strict", "Match the query strictly"),
	}
	searchOpts = append(searchOpts, scriptBloxFilterOptions()...)

	fetchOpts := []*discordgo.ApplicationCommandOption{modeOption(), pageOption()}
	fetchOpts = append(fetchOpts, scriptBloxFilterOptions()...)

	rsFetchOpts := []*discordgo.ApplicationCommandOption{modeOption(), pageOption()}
	rsFetchOpts = append(rsFetchOpts, rscriptsFilterOptions()...)

	byUserOpts := []*discordgo.ApplicationCommandOption{
		stringOption("username", "Rscripts username", true),
		pageOption(),
		stringOption("order_by", "Sort field", false, "date", "views", "likes"),
		stringOption("sort", "Sort order", false, "asc", "desc"),
	}

	return []*discordgo.ApplicationCommand{
		{Name: CommandSearch, Description: "Search for scripts", Options: searchOpts},
		{Name: CommandFetch, Description: "Browse the latest ScriptBlox scripts", Options: fetchOpts},
		{Name: CommandTrending, Description: "Show trending scripts", Options: []*discordgo.ApplicationCommandOption{sourceOption()}},
		{Name: CommandScript, Description: "Show one script by id", Options: []*discordgo.ApplicationCommandOption{
			stringOption("id", "Script id", true),
			sourceOption(),
		}},
		{Name: CommandExecutors, Description: "List executors and their status"},
		{Name: CommandRscriptsFetch, Description: "Browse the latest Rscripts scripts", Options: rsFetchOpts},
		{Name: CommandRscriptsByUser, Description: "Scripts uploaded by an Rscripts user", Options: byUserOpts},
		{Name: CommandBotHelp, Description: "Show how to use the bot"},
	}
}

// slashArgs flattens typed options into named string arguments.
func slashArgs(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	args := make(map[string]string, len(options))
	for _, opt := range options {
		name := opt.Name
		if alias, ok := optionArgs[name]; ok {
			name = alias
		}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			args[name] = opt.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			args[name] = strconv.FormatInt(opt.IntValue(), 10)
		case discordgo.ApplicationCommandOptionBoolean:
			args[name] = strconv.FormatBool(opt.BoolValue())
		}
	}
	return args
}
