package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "translate":
		return runTranslate(args[1:])
	case "hosts":
		return runHosts(args[1:])
	case "overview":
		return runOverview(args[1:])
	case "trends":
		return runTrends(args[1:])
	case "discounts":
		return runDiscounts(args[1:])
	case "geo":
		return runGeo(args[1:])
	case "runs":
		return runRuns(args[1:])
	case "serve":
		return runServe(args[1:])
	case "hash-token":
		return runHashToken(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "staylens CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  staylens <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health      Check config, data directory, providers and database")
	fmt.Fprintln(os.Stderr, "  translate   Translate review comments into translated_reviews.csv")
	fmt.Fprintln(os.Stderr, "  hosts       List top hosts and their price extracts")
	fmt.Fprintln(os.Stderr, "  overview    Print dataset counts")
	fmt.Fprintln(os.Stderr, "  trends      Print weekly mean prices per host")
	fmt.Fprintln(os.Stderr, "  discounts   Print the largest calendar discounts")
	fmt.Fprintln(os.Stderr, "  geo         Validate neighbourhood boundaries and rank neighbourhoods")
	fmt.Fprintln(os.Stderr, "  runs        List recent translation runs")
	fmt.Fprintln(os.Stderr, "  serve       Start Echo API server")
	fmt.Fprintln(os.Stderr, "  hash-token  Print a bcrypt hash for API_TOKEN_HASH")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"staylens <command> -h\" for command-specific flags.")
}
