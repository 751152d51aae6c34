package app

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/staylens/internal/auth"
)

func runHashToken(args []string) int {
	fs := flag.NewFlagSet("hash-token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	generate := fs.Bool("generate", false, "Generate a random token and print it with its hash")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 || (*generate && fs.NArg() != 0) {
		fmt.Fprintln(os.Stderr, "Usage: staylens hash-token [--generate | <token>]")
		return 2
	}

	var token string
	switch {
	case *generate:
		generated, err := auth.GenerateToken()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		token = generated
		fmt.Printf("token: %s\n", token)
	case fs.NArg() == 1:
		token = fs.Arg(0)
	default:
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "token is required on stdin or as an argument")
			return 2
		}
		token = strings.TrimSpace(line)
	}

	hash, err := auth.HashToken(token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash token: %v\n", err)
		return 2
	}
	fmt.Printf("API_TOKEN_HASH=%s\n", hash)
	return 0
}
