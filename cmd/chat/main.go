package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	server string
	user   string
)

var rootCmd = &cobra.Command{
	Use:   "wabot-chat",
	Short: "Chat with a running WaBot through its REST gateway",
	Long: `wabot-chat sends each line you type to the bot's REST gateway and
prints every reply, so commands can be tried without a WhatsApp number.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return repl(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send a single message and print the replies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendMessage(cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&server, "server", "http://localhost:8080", "WaBot server URL")
	rootCmd.PersistentFlags().StringVar(&user, "user", "cli-user", "user id to chat as")
	rootCmd.AddCommand(sendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func repl(in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "WaBot CLI Chat")
	fmt.Fprintf(out, "Server: %s | User: %s\n", server, user)
	fmt.Fprintln(out, "Type 'exit' or 'quit' to leave, ':status' for gateway status. Try /help.")
	fmt.Fprintln(out, "---")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return nil
		case ":status":
			fetchStatus(out)
			continue
		}
		if err := sendMessage(out, input); err != nil {
			printError("%v", err)
		}
	}
}

func fetchStatus(out io.Writer) {
	resp, err := http.Get(server + "/api/gateway/status")
	if err != nil {
		printError("Failed to fetch status: %v", err)
		return
	}
	defer resp.Body.Close()

	var statuses []struct {
		Platform  string `json:"platform"`
		Connected bool   `json:"connected"`
		Details   string `json:"details,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		printError("Failed to parse status: %v", err)
		return
	}
	fmt.Fprintln(out, "Gateway Status:")
	for _, s := range statuses {
		icon := "\033[31m✗\033[0m"
		if s.Connected {
			icon = "\033[32m✓\033[0m"
		}
		fmt.Fprintf(out, "  %s %s", icon, s.Platform)
		if s.Details != "" {
			fmt.Fprintf(out, " — %s", s.Details)
		}
		fmt.Fprintln(out)
	}
}

func sendMessage(out io.Writer, content string) error {
	body, _ := json.Marshal(map[string]string{
		"user_id":   user,
		"user_name": user,
		"content":   content,
	})

	client := &http.Client{Timeout: 65 * time.Second}
	resp, err := client.Post(
		server+"/api/gateway/rest/message",
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(data))
	}

	var reply struct {
		Replies []struct {
			Type     string `json:"type"`
			Content  string `json:"content"`
			AudioURL string `json:"audio_url"`
		} `json:"replies"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if len(reply.Replies) == 0 {
		fmt.Fprintln(out, "(no reply)")
	}
	for _, r := range reply.Replies {
		if r.Type == "audio" {
			fmt.Fprintf(out, "\033[36m[audio]\033[0m %s\n", r.AudioURL)
			continue
		}
		fmt.Fprintln(out, r.Content)
	}
	return nil
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\033[31m"+format+"\033[0m\n", args...)
}
