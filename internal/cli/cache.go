package cmd

import (
	"fmt"
	"strings"

	"github.com/rohmanhakim/nps-crawler/internal/cache"
	"github.com/rohmanhakim/nps-crawler/pkg/hashutil"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the request cache",
}

var cacheKeyCmd = &cobra.Command{
	Use:     "key <endpoint> [name=value...]",
	Short:   "Print the cache key of a request",
	Example: `  nps-crawler cache key http://www.mapquestapi.com/search/v2/radius origin=82190 radius=10`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(args[1:])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cache.KeyFor(args[0], params))
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the cached requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		metadataSink := newMetadataSink(cfg, cmd.ErrOrStderr())
		store, closeStore, err := openStore(cmd.Context(), cfg, metadataSink)
		if err != nil {
			return err
		}
		defer closeStore()

		requestCache := cache.Open(cmd.Context(), store, metadataSink)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d cached requests", requestCache.Len())))
		for _, key := range requestCache.Keys() {
			entry, _ := requestCache.Lookup(key)
			bodyHash, hashErr := hashutil.ShortHash([]byte(entry.Body), hashutil.HashAlgoBLAKE3, 12)
			if hashErr != nil {
				return hashErr
			}
			fmt.Fprintf(out, "%s %s %s\n", indexStyle.Render(bodyHash), nearbyStyle.Render(entry.ContentType), key)
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheKeyCmd)
	cacheCmd.AddCommand(cacheListCmd)
	rootCmd.AddCommand(cacheCmd)
}

// parseParams reads name=value arguments. A value may itself contain '='.
func parseParams(args []string) (cache.Params, error) {
	params := cache.Params{}
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("parameter %q is not name=value", arg)
		}
		params[name] = value
	}
	return params, nil
}
