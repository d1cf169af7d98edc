// Storevoice is a voice command engine for storefronts. It classifies
// shopper utterances into intents, resolves product references against what
// is on screen, invokes host capabilities and speaks the response.
//
// Usage:
//
//	storevoice serve --config configs/storevoice.yaml
//	storevoice console --user demo
//	storevoice classify "add the first one"
//
// @title       storevoice API
// @version     1.0
// @description Voice command engine for storefronts: intent classification, speech synthesis and server-side command sessions.
// @BasePath    /
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "storevoice",
	Short: "Voice command engine for storefronts",
	Long: `storevoice turns spoken or typed shopper commands into storefront actions.
It serves the remote classifier and speech endpoints, runs server-side
command sessions, and offers a console for trying utterances locally.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (e.g. configs/storevoice.yaml)")
}
