package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rohmanhakim/nps-crawler/internal/build"
	"github.com/rohmanhakim/nps-crawler/internal/pipeline"
	"github.com/rohmanhakim/nps-crawler/internal/places"
	"github.com/rohmanhakim/nps-crawler/internal/report"
	"github.com/spf13/cobra"
)

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "List the states found on the home page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromFlags(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		names, classifiedErr := a.runner.States(cmd.Context())
		if classifiedErr != nil {
			return classifiedErr
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d states", len(names))))
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

var sitesCmd = &cobra.Command{
	Use:   "sites <state>",
	Short: "List the national sites of a state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromFlags(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		result, classifiedErr := a.runner.Sites(cmd.Context(), args[0])
		if classifiedErr != nil {
			return classifiedErr
		}
		printResult(cmd.OutOrStdout(), result)
		return nil
	},
}

var nearbyCmd = &cobra.Command{
	Use:   "nearby <state> <n>",
	Short: "List the places near the n-th site of a state",
	Long: `Lists every place the radius search returns around the zip code of the
n-th site, numbered as printed by "sites".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("site number must be an integer, got %q", args[1])
		}

		a, err := appFromFlags(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		chosen, found, classifiedErr := a.runner.NearbyForSite(cmd.Context(), args[0], n)
		out := cmd.OutOrStdout()
		if classifiedErr != nil {
			if !errors.Is(classifiedErr, places.ErrNoResults) {
				return classifiedErr
			}
			fmt.Fprintln(out, headerStyle.Render(chosen.Info()))
			fmt.Fprintln(out, nearbyStyle.Render(pipeline.NoNearbyLine))
			return nil
		}

		fmt.Fprintln(out, headerStyle.Render(chosen.Info()))
		for _, p := range found {
			fmt.Fprintln(out, p.Format())
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <state>",
	Short: "Print every site of a state with its nearest place and write a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromFlags(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		result, classifiedErr := a.runner.Run(cmd.Context(), args[0])
		if classifiedErr != nil {
			return classifiedErr
		}

		out := cmd.OutOrStdout()
		printResult(out, result)

		written, classifiedErr := a.reports.Write(
			a.cfg.ReportDir(),
			result,
			report.Format(a.cfg.ReportFormat()),
		)
		if classifiedErr != nil {
			return classifiedErr
		}
		contentHash := written.ContentHash()
		if len(contentHash) > 12 {
			contentHash = contentHash[:12]
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf(
			"wrote %s (%d sites, blake3 %s)", written.Path(), written.SiteCount(), contentHash,
		)))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nps-crawler %s (built %s)\n", build.FullVersion(), build.BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(statesCmd)
	rootCmd.AddCommand(sitesCmd)
	rootCmd.AddCommand(nearbyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

func appFromFlags(cmd *cobra.Command) (*app, error) {
	cfg, err := InitConfigWithError()
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
}

func printResult(out io.Writer, result pipeline.Result) {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d sites in %s", len(result.Sites), result.State)))
	for _, line := range result.Lines() {
		if strings.HasPrefix(line, "    ") {
			fmt.Fprintln(out, nearbyStyle.Render(line))
			continue
		}
		fmt.Fprintln(out, line)
	}
}
