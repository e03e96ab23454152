package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/keepmind9/scriptbot/internal/upstream"
	"github.com/keepmind9/scriptbot/pkg/constants"
	"github.com/spf13/cobra"
)

var (
	lookupSource        string
	lookupMode          string
	lookupPage          int
	lookupScriptBloxURL string
	lookupRscriptsURL   string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <query>",
	Short: "Search scripts from the terminal",
	Long: `Run one search against ScriptBlox or Rscripts and print the result page
as a table. No Discord connection or bot token is needed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		client := upstream.NewHTTPClient(upstream.HTTPOptions{})
		params := upstream.SearchParams{
			Query: strings.Join(args, " "),
			Mode:  lookupMode,
			Page:  lookupPage,
		}
		baseURL := lookupScriptBloxURL
		if lookupSource == "rscripts" {
			baseURL = lookupRscriptsURL
		}
		return lookup(ctx, cmd.OutOrStdout(), client, lookupSource, baseURL, params)
	},
}

func lookup(ctx context.Context, w io.Writer, client *upstream.HTTPClient, source, baseURL string, p upstream.SearchParams) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	switch source {
	case "scriptblox":
		page, err := upstream.NewScriptBlox(client, baseURL).Search(ctx, p)
		if err != nil {
			return fmt.Errorf("lookup failed: %w", err)
		}
		fmt.Fprintln(tw, "TITLE\tGAME\tVIEWS\tTYPE\tVERIFIED\tKEY")
		for _, s := range page.Scripts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				s.Title, s.Game.Name, humanize.Comma(int64(s.Views)), s.ScriptType,
				yesNo(s.Verified), yesNo(s.Key))
		}
		writePageFooter(tw, p.Page, page.TotalPages)
	case "rscripts":
		page, err := upstream.NewRscripts(client, baseURL).Search(ctx, p)
		if err != nil {
			return fmt.Errorf("lookup failed: %w", err)
		}
		fmt.Fprintln(tw, "TITLE\tUPLOADER\tVIEWS\tLIKES\tKEY SYSTEM\tMOBILE")
		for _, s := range page.Scripts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				s.Title, s.User.Username, humanize.Comma(int64(s.Views)), humanize.Comma(int64(s.Likes)),
				yesNo(s.KeySystem), yesNo(s.MobileReady))
		}
		writePageFooter(tw, p.Page, page.TotalPages)
	default:
		return fmt.Errorf("unknown source %q (want scriptblox or rscripts)", source)
	}

	return tw.Flush()
}

func writePageFooter(w io.Writer, page, total int) {
	if page < 1 {
		page = 1
	}
	if total == upstream.Unknown {
		fmt.Fprintf(w, "\nPage %d/?\n", page)
		return
	}
	fmt.Fprintf(w, "\nPage %d/%d\n", page, total)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupSource, "source", "s", "scriptblox", "Script source (scriptblox or rscripts)")
	lookupCmd.Flags().StringVarP(&lookupMode, "mode", "m", "free", "Script mode (free or paid)")
	lookupCmd.Flags().IntVarP(&lookupPage, "page", "p", 1, "Result page")
	lookupCmd.Flags().StringVar(&lookupScriptBloxURL, "scriptblox-url", constants.DefaultScriptBloxURL, "ScriptBlox API base URL")
	lookupCmd.Flags().StringVar(&lookupRscriptsURL, "rscripts-url", constants.DefaultRscriptsURL, "Rscripts API base URL")
}
