// Command reco is the CLI entrypoint: a root cobra command with shell,
// load, and eval subcommands, mirroring the retrieval pack's
// cobra-rootCmd-plus-AddCommand layout (gallery-so-go-gallery's
// indexer/cmd).
package main

func main() {
	Execute()
}
