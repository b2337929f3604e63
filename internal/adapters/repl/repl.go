// Package repl is the interactive terminal adapter. It reads lines,
// routes natural language through the application service, and prints
// the replies. Slash commands cover direct lookups without a round
// trip through the classifier.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"shop-agent/internal/app"
	"shop-agent/internal/core"
)

// Run starts the interactive loop. userID scopes conversation memory;
// every invocation of the binary with the same user continues the same
// conversation.
func Run(ctx context.Context, svc app.ApplicationService, userID string, reader *bufio.Reader) {
	fmt.Println("Shop Assistant")
	fmt.Println("Describe a purchase, sale or question, or use /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := dispatchSlash(input); quit {
				return
			}
			continue
		}

		res, err := svc.HandleMessage(ctx, userID, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printResult(res)
	}
}

// dispatchSlash handles built-in commands. Returns true to exit.
func dispatchSlash(input string) bool {
	switch strings.ToLower(strings.TrimPrefix(input, "/")) {
	case "help":
		fmt.Println("Commands:")
		fmt.Println("  /help   show this help")
		fmt.Println("  /exit   quit")
		fmt.Println("Everything else is treated as a message, e.g.:")
		fmt.Println("  bought 10 pens at 5 from Sharma Traders")
		fmt.Println("  sold 3 pens at 8 to Rahul")
		fmt.Println("  low stock check")
		fmt.Println("  weekly report")
	case "exit", "quit", "q":
		fmt.Println("Bye.")
		return true
	default:
		fmt.Println("Unknown command. Try /help.")
	}
	return false
}

func printResult(res *app.MessageResult) {
	if res.Transcript != "" {
		fmt.Printf("(heard: %s)\n", res.Transcript)
	}
	fmt.Println(res.Reply)
	if res.State == core.StatePartial {
		fmt.Println("(some lines could not be applied)")
	}
	if res.Document != nil {
		if err := os.WriteFile(res.Document.Filename, res.Document.Data, 0o644); err != nil {
			fmt.Printf("Could not save %s: %v\n", res.Document.Filename, err)
		} else {
			fmt.Printf("Saved %s\n", res.Document.Filename)
		}
	}
}
