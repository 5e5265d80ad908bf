package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/okian/gochamp/internal/adapters/remote"
	service "github.com/okian/gochamp/internal/app"
	"github.com/okian/gochamp/internal/domain/model"
	"github.com/okian/gochamp/internal/smoke"
)

const defaultUploadParallel = 2

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Long: `Log in and print the session returned by the service.

The password is prompted for when --password is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			secret := password
			if secret == "" {
				var err error
				if secret, err = c.readPassword(); err != nil {
					return err
				}
			}
			out := c.svc.Login(cmd.Context(), model.Credentials{Email: strings.TrimSpace(email), Password: secret})
			if out.Navigate == "" {
				if out.Err != nil {
					return fmt.Errorf("%s: %w", out.Alert, out.Err)
				}
				return errors.New(out.Alert)
			}
			return c.printSession(out.Session)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (supply to avoid prompt)")
	return cmd
}

// readPassword prompts on a terminal and otherwise reads one line.
func (c *cli) readPassword() (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.errOut, "Password: ")
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprint(c.errOut, "\n")
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) athletesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "athletes",
		Short: "List athletes as profile cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			athletes, err := c.client.ListAthletes(cmd.Context())
			if err != nil {
				return err
			}
			return c.printCards(service.Cards(athletes))
		},
	}
}

func (c *cli) uploadCmd() *cobra.Command {
	var parallel int
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload videos for assessment",
		Long: `Upload one or more videos. Each file is one independent request; up to
--parallel uploads run at once. Results are printed in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			outcomes := make([]service.UploadOutcome, len(args))

			var g errgroup.Group
			g.SetLimit(max(parallel, 1))
			for i, path := range args {
				g.Go(func() error {
					up, closer, err := remote.OpenFile(path)
					if err != nil {
						outcomes[i] = service.UploadOutcome{Notice: err.Error(), Err: err}
						return nil
					}
					defer func() { _ = closer.Close() }()
					outcomes[i] = c.svc.Upload(ctx, up)
					return nil
				})
			}
			_ = g.Wait()

			var failed []error
			for i, out := range outcomes {
				if out.Err != nil {
					failed = append(failed, fmt.Errorf("%s: %w", args[i], out.Err))
				}
			}
			if err := c.printUploads(args, outcomes); err != nil {
				return err
			}
			return errors.Join(failed...)
		},
	}
	cmd.Flags().IntVar(&parallel, "parallel", defaultUploadParallel, "maximum concurrent uploads")
	return cmd
}

func (c *cli) leaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the ranked leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.svc.Leaderboard(cmd.Context())
			if err != nil {
				return err
			}
			return c.printLeaderboard(entries)
		},
	}
}

func (c *cli) latestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent assessment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.svc.Latest(cmd.Context())
			if err != nil {
				return err
			}
			return c.printResult("latest", res)
		},
	}
}

func (c *cli) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the performance report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.printReport(c.svc.Reports(cmd.Context()))
		},
	}
}

func (c *cli) otpCmd() *cobra.Command {
	var phone string
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Phone one-time password login",
	}
	cmd.PersistentFlags().StringVar(&phone, "phone", "", "phone number")

	requirePhone := func() error {
		if strings.TrimSpace(phone) == "" {
			return errors.New("--phone is required")
		}
		return nil
	}

	send := &cobra.Command{
		Use:   "send",
		Short: "Send a one-time password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requirePhone(); err != nil {
				return err
			}
			d, err := c.client.SendOTP(cmd.Context(), phone)
			if err != nil {
				return err
			}
			return c.printValue(d, d.Message)
		},
	}
	resend := &cobra.Command{
		Use:   "resend",
		Short: "Send a fresh one-time password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requirePhone(); err != nil {
				return err
			}
			d, err := c.client.ResendOTP(cmd.Context(), phone)
			if err != nil {
				return err
			}
			return c.printValue(d, d.Message)
		},
	}
	verify := &cobra.Command{
		Use:   "verify <code>",
		Short: "Exchange a one-time password for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePhone(); err != nil {
				return err
			}
			res, err := c.client.VerifyOTP(cmd.Context(), phone, args[0])
			if err != nil {
				return err
			}
			return c.printSession(res)
		},
	}
	cmd.AddCommand(send, resend, verify)
	return cmd
}

func (c *cli) verifyTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-token <token>",
		Short: "Ask the service whether a token is valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.client.VerifyToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text := "invalid"
			if st.Valid {
				text = "valid"
				if st.PhoneNumber != "" {
					text += " (" + st.PhoneNumber + ")"
				}
			}
			return c.printValue(st, text)
		},
	}
}

func (c *cli) smokeCmd() *cobra.Command {
	var (
		cfg             smoke.Config
		email, password string
	)
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run a deployment smoke check",
		Long: `Ping the service, optionally log in, list athletes, send overlapping
listing probes, verify the leaderboard ordering and fetch the latest result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email != "" {
				cfg.Credentials = &model.Credentials{Email: email, Password: password}
			}
			stats, err := smoke.Run(cmd.Context(), c.client, cfg)
			if stats != nil {
				if perr := c.printValue(stats, smokeSummary(stats)); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().IntVar(&cfg.Probes, "probes", smoke.DefaultProbes, "number of concurrent listing probes")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 0, "probe workers (default CPU cores * 2)")
	cmd.Flags().DurationVar(&cfg.Timeout, "deadline", smoke.DefaultTimeout, "deadline for the whole check")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "log every failed probe")
	cmd.Flags().StringVar(&email, "email", "", "log in with this email")
	cmd.Flags().StringVar(&password, "password", "", "password for --email")
	return cmd
}

func smokeSummary(s *smoke.Stats) string {
	return fmt.Sprintf("%s\nathletes: %d  probes: %d/%d ok  leaderboard: %d entries  latest: %t  took %s",
		s.Message, s.Athletes, s.ProbesSucceeded, s.ProbesSent, s.LeaderboardEntries, s.LatestAvailable,
		s.Duration.Round(time.Millisecond))
}

// tokenClaims describes a JWT for display. The signature is not verified.
type tokenClaims struct {
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

func inspectToken(token string) *tokenClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	out := &tokenClaims{}
	out.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time.UTC()
		out.ExpiresAt = &t
	}
	return out
}
