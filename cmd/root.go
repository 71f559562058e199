/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blacktop/multipost/internal/api"
	"github.com/blacktop/multipost/internal/config"
	"github.com/blacktop/multipost/internal/logutil"
	"github.com/blacktop/multipost/internal/multired"
)

var (
	messageFlag string
	targetsFlag []string
	dryRun      bool
	verbose     bool
)

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multipost [message]",
		Short: "Publish one text to multiple social networks",
		Long: "multipost sends your text to the content backend, which adapts it per " +
			"network and publishes it to Facebook, Instagram, LinkedIn, WhatsApp, and TikTok. " +
			"Provide the message as an argument, with --message, or on stdin.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logutil.SetVerbose(verbose)
		},
		RunE: runRoot,
		Example: `  multipost --message "Exam schedule published" --target facebook
  multipost "Enrollment deadline extended" --target facebook --target instagram
  echo "Semester starts Monday" | multipost --target all`,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable verbose logging")
	cmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Message text to publish")
	cmd.Flags().StringSliceVarP(&targetsFlag, "target", "t", []string{"facebook"}, "Targets to publish to (facebook, instagram, linkedin, whatsapp, tiktok, or all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print actions without publishing")
	cmd.Flags().SortFlags = false

	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newRegisterCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newChatCommand())
	cmd.AddCommand(newCompletionCommand())

	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	message, err := resolveMessage(cmd, args)
	if err != nil {
		return err
	}

	targets, err := normalizeTargets(targetsFlag)
	if err != nil {
		return err
	}

	if dryRun {
		for _, target := range targets {
			fmt.Fprintf(out, "[dry-run] would publish to %s: %q\n", target, message)
		}
		return nil
	}

	client, _, err := buildClient()
	if err != nil {
		return err
	}

	publisher := multired.NewPublisher(client, multired.NewTargetSet(targets...), nil)
	report, err := publisher.Publish(ctx, message)
	if err != nil {
		return err
	}

	printReport(out, report)
	return nil
}

// buildClient assembles the backend client from environment configuration
// plus the persisted session, if any.
func buildClient() (*api.Client, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	if cfg.Verbose {
		logutil.SetVerbose(true)
	}

	session, err := config.LoadSession()
	if err != nil {
		return nil, config.Config{}, err
	}

	client := api.NewClient(api.Config{
		BaseURL:       cfg.APIURL,
		Token:         session.Token,
		Timeout:       cfg.Timeout,
		SingleTimeout: cfg.SingleTimeout,
		MultiTimeout:  cfg.MultiTimeout,
	})
	return client, cfg, nil
}

func resolveMessage(cmd *cobra.Command, args []string) (string, error) {
	var message string

	if messageFlag != "" {
		message = messageFlag
	}

	if len(args) > 0 {
		if message != "" {
			return "", errors.New("provide the message either as an argument or with --message, not both")
		}
		message = strings.Join(args, " ")
	}

	if message != "" {
		return strings.TrimSpace(message), nil
	}

	stdin := cmd.InOrStdin()
	if file, ok := stdin.(*os.File); ok {
		info, err := file.Stat()
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if (info.Mode() & os.ModeCharDevice) == 0 {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return "", fmt.Errorf("read stdin: %w", err)
			}
			message = strings.TrimSpace(string(data))
		}
	}

	if message == "" {
		return "", errors.New("message is required")
	}

	return message, nil
}

func normalizeTargets(values []string) ([]multired.Target, error) {
	result := make([]multired.Target, 0, len(values))
	seen := map[multired.Target]struct{}{}
	for _, raw := range values {
		raw = strings.TrimSpace(strings.ToLower(raw))
		if raw == "" {
			continue
		}
		if raw == "all" {
			return append([]multired.Target(nil), multired.AllTargets...), nil
		}
		target, ok := multired.ParseTarget(raw)
		if !ok {
			return nil, fmt.Errorf("unsupported target %q", raw)
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		result = append(result, target)
	}

	if len(result) == 0 {
		return nil, errors.New("no targets selected")
	}

	return result, nil
}

func printReport(out io.Writer, report *multired.Report) {
	if report.Single != nil {
		printResult(out, *report.Single)
		return
	}

	outcome := report.Multi
	for _, target := range multired.AllTargets {
		result, ok := outcome.PerTarget[target]
		if !ok {
			continue
		}
		printResult(out, result)
	}
	s := outcome.Summary
	fmt.Fprintf(out, "summary: %d/%d succeeded (%s) in %.1fs\n",
		s.Succeeded, s.ValidNetworks, s.RawRate, s.Elapsed)
}

func printResult(out io.Writer, r multired.Result) {
	if !r.OK() {
		fmt.Fprintf(out, "%s: failed: %s\n", r.Target, r.Err)
		return
	}
	fmt.Fprintf(out, "%s: published", r.Target)
	if r.PublishedID != "" {
		fmt.Fprintf(out, " id=%s", r.PublishedID)
	}
	if r.PublicLink != "" {
		fmt.Fprintf(out, " link=%s", r.PublicLink)
	}
	fmt.Fprintln(out)
	if r.Validation != nil && !r.Validation.Academic {
		fmt.Fprintf(out, "%s: validation warning: %s\n", r.Target, r.Validation.Reason)
	}
}
