package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blacktop/multipost/internal/api"
	"github.com/blacktop/multipost/internal/chat"
	"github.com/blacktop/multipost/internal/multired"
	"github.com/blacktop/multipost/internal/poller"
)

func newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Converse with the content assistant",
		Long: "Chat with the backend assistant. A user message carrying target networks " +
			"makes the backend adapt, generate media for, and publish the content, then " +
			"reply in the conversation once it is done.",
	}

	cmd.AddCommand(newChatListCommand())
	cmd.AddCommand(newChatNewCommand())
	cmd.AddCommand(newChatRemoveCommand())
	cmd.AddCommand(newChatSendCommand())
	return cmd
}

func newChatListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := buildClient()
			if err != nil {
				return err
			}
			conversations, err := client.Conversations(cmd.Context())
			if err != nil {
				return err
			}
			if len(conversations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no conversations")
				return nil
			}
			for _, conv := range conversations {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n",
					conv.ID, conv.UpdatedAt.Format("2006-01-02 15:04"), conv.Title)
			}
			return nil
		},
	}
}

func newChatNewCommand() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := buildClient()
			if err != nil {
				return err
			}
			conv, err := client.CreateConversation(cmd.Context(), title)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created conversation %d: %s\n", conv.ID, conv.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Conversation title")
	return cmd
}

func newChatRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid conversation id %q", args[0])
			}
			client, _, err := buildClient()
			if err != nil {
				return err
			}
			if err := client.DeleteConversation(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted conversation %d\n", id)
			return nil
		},
	}
}

func newChatSendCommand() *cobra.Command {
	var (
		conversationID int64
		sendTargets    []string
	)

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send a message and wait for the assistant reply",
		Long: "Send a user message with the selected target networks attached, then poll " +
			"the conversation until the assistant reply appears or the waiting budget runs out.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			content := strings.TrimSpace(strings.Join(args, " "))
			if content == "" {
				return errors.New("message is required")
			}

			targets, err := normalizeTargets(sendTargets)
			if err != nil {
				return err
			}

			client, cfg, err := buildClient()
			if err != nil {
				return err
			}

			conv, err := resolveConversation(cmd, client, conversationID)
			if err != nil {
				return err
			}

			session := chat.NewSession(client, *conv, multired.NewTargetSet(targets...), poller.Config{
				InitialDelay: cfg.PollInitialDelay,
				Interval:     cfg.PollInterval,
				MaxAttempts:  cfg.PollAttempts,
			})
			if err := session.Refresh(ctx); err != nil {
				return err
			}

			state, err := session.Send(ctx, content)
			if err != nil {
				return err
			}

			switch state {
			case poller.Resolved:
				messages := session.Messages()
				last := messages[len(messages)-1]
				fmt.Fprintln(out, last.Content)
			case poller.Exhausted:
				fmt.Fprintln(out, "stopped waiting; the backend is still working. Check back with 'multipost chat ls'.")
			}
			return nil
		},
	}

	cmd.Flags().Int64VarP(&conversationID, "conversation", "c", 0, "Conversation id (a new one is created when omitted)")
	cmd.Flags().StringSliceVarP(&sendTargets, "target", "t", []string{"facebook"}, "Targets to publish to (facebook, instagram, linkedin, whatsapp, tiktok, or all)")
	return cmd
}

func resolveConversation(cmd *cobra.Command, client *api.Client, id int64) (*multired.Conversation, error) {
	if id > 0 {
		detail, err := client.Conversation(cmd.Context(), id)
		if err != nil {
			return nil, err
		}
		return &detail.Conversation, nil
	}
	conv, err := client.CreateConversation(cmd.Context(), "")
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "started conversation %d\n", conv.ID)
	return conv, nil
}
