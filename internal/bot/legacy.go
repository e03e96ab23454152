package bot

import (
	"strings"

	"github.com/google/shlex"
)

// Prefix commands the bot answers to.
const (
	CommandSearch  = "search"
	CommandHelp    = "help"
	CommandBotHelp = "bothelp"
)

// Search modes understood as a bare positional word.
var searchModes = map[string]bool{"free": true, "paid": true}

// parsePrefixCommand parses a "<prefix><command> args..." message. Arguments
// are split shell-style so quoted queries stay together. For search, the
// positional words form the query, a trailing "free" or "paid" sets the mode
// and key=value words become named arguments.
func parsePrefixCommand(prefix, content string) (string, map[string]string, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}

	words, err := shlex.Split(strings.TrimPrefix(content, prefix))
	if err != nil || len(words) == 0 {
		// Unbalanced quotes fall back to plain whitespace splitting.
		words = strings.Fields(strings.TrimPrefix(content, prefix))
		if len(words) == 0 {
			return "", nil, false
		}
	}

	command := strings.ToLower(words[0])
	args := make(map[string]string)

	switch command {
	case CommandHelp, CommandBotHelp:
		return command, args, true
	case CommandSearch:
	default:
		return "", nil, false
	}

	var query []string
	for _, w := range words[1:] {
		if key, value, ok := strings.Cut(w, "="); ok && key != "" {
			args[key] = value
			continue
		}
		query = append(query, w)
	}
	if n := len(query); n > 1 && searchModes[strings.ToLower(query[n-1])] {
		args["mode"] = strings.ToLower(query[n-1])
		query = query[:n-1]
	}
	if len(query) > 0 {
		args["query"] = strings.Join(query, " ")
	}
	return command, args, true
}
