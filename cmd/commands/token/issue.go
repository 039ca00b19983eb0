package token

import (
	"fmt"
	"strings"
	"time"

	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/trigger"
	"nathanbeddoewebdev/ccev/internal/util"

	"github.com/spf13/cobra"
)

func IssueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a token and trigger link",
		Long: `Issue a signed token. When a base URL is known the trigger link is
printed too.

Examples:
  ccev token issue
  ccev token issue --subject ops@example.com --ttl 1h
  ccev token issue --base-url https://cache.example.com -o json`,
		Args:         cobra.NoArgs,
		RunE:         runIssue,
		SilenceUsage: true,
	}

	cmd.Flags().String("subject", "admin", "Who the token is for; notices are kept per subject")
	cmd.Flags().Duration("ttl", trigger.DefaultTTL, "How long the token stays valid")
	cmd.Flags().String("base-url", "", "URL 'ccev serve' is reachable at (default: site-url)")
	cmd.Flags().StringP("output", "o", "text", "Output format: text or json")

	return cmd
}

type issued struct {
	Subject   string    `json:"subject"`
	Token     string    `json:"token"`
	Link      string    `json:"link,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func runIssue(cmd *cobra.Command, args []string) error {
	output, err := cmdutil.OutputFormat(cmd, "text", "json")
	if err != nil {
		return err
	}
	subject, _ := cmd.Flags().GetString("subject")
	subject = strings.TrimSpace(subject)
	if err := util.ValidateSubject(subject); err != nil {
		return err
	}
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	baseURL, _ := cmd.Flags().GetString("base-url")
	if strings.TrimSpace(baseURL) == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		baseURL = cfg.SiteURL
	}

	signer, err := trigger.FromStore(auth.DefaultStore())
	if err != nil {
		return err
	}
	tok, err := signer.Issue(subject, ttl)
	if err != nil {
		return err
	}

	out := issued{Subject: subject, Token: tok, ExpiresAt: time.Now().Add(ttl).UTC().Truncate(time.Second)}
	if baseURL != "" {
		out.Link, err = trigger.Link(baseURL, tok)
		if err != nil {
			return err
		}
	}

	if output == "json" {
		return cmdutil.PrintJSON(cmd, out)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Token: %s\n", out.Token)
	if out.Link != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Link:  %s\n", out.Link)
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "No site-url configured; pass --base-url to print a trigger link.")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Expires: %s\n", out.ExpiresAt.Format(time.RFC3339))
	return nil
}
