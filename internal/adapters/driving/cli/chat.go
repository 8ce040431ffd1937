package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant about a suite",
}

var chatSendCmd = &cobra.Command{
	Use:   "send <suite-id> <message>",
	Short: "Send one chat message",
	Long: `Send a message about a suite to the assistant.

If the assistant rewrites the suite, the new test cases replace the old
ones and are saved immediately.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runChatSend,
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history <suite-id>",
	Short: "Show a suite's chat transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatHistory,
}

var chatClearCmd = &cobra.Command{
	Use:   "clear <suite-id>",
	Short: "Clear a suite's chat transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatClear,
}

func init() {
	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatClearCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChatSend(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return fmt.Errorf("review %w", errNotConfigured)
	}

	ctx := cmd.Context()
	if err := reviewService.Open(ctx, args[0], false); err != nil {
		return err
	}
	defer reviewService.Leave(ctx, true) //nolint:errcheck // buffer is clean after a chat turn

	reply, err := reviewService.SendChat(ctx, strings.Join(args[1:], " "))
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			return errors.New("no LLM configured; run 'suitesmith settings llm' first")
		}
		return fmt.Errorf("chat failed: %w", err)
	}

	cmd.Println(reply.ResponseText)
	if reply.HasModifications() {
		cmd.Printf("\nSuite updated and saved: %d test cases\n", len(reply.ModifiedTestCases))
	}
	return nil
}

func runChatHistory(cmd *cobra.Command, args []string) error {
	if repositoryService == nil {
		return fmt.Errorf("repository %w", errNotConfigured)
	}
	if _, err := repositoryService.GetSuite(args[0]); err != nil {
		return err
	}

	history := repositoryService.ChatHistory(args[0])
	if len(history) == 0 {
		cmd.Println("No messages yet.")
		return nil
	}
	for _, msg := range history {
		cmd.Printf("[%s] %s:\n%s\n\n", msg.CreatedAt.Format(timeLayout), msg.Role, msg.Content)
	}
	return nil
}

func runChatClear(cmd *cobra.Command, args []string) error {
	if repositoryService == nil {
		return fmt.Errorf("repository %w", errNotConfigured)
	}
	if err := repositoryService.ClearChatHistory(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	cmd.Printf("Cleared chat history for suite %s\n", args[0])
	return nil
}
