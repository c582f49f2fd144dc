// Command gsstyle manages CSS styles on a GeoServer instance.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dcfaria/GeoServer/client"
	"github.com/dcfaria/GeoServer/internal/config"
	"github.com/dcfaria/GeoServer/internal/logger"
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// rootOptions carries the persistent flags and the resolved configuration.
type rootOptions struct {
	url      string
	user     string
	password string
	timeout  time.Duration
	legacy   bool
	debug    bool

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "gsstyle",
		Short:         "Publish, update and remove GeoServer CSS styles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if o.debug {
				level = zerolog.DebugLevel
			}
			o.log = logger.NewConsole(cmd.ErrOrStderr(), level)
			log.Logger = o.log

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("url") {
				cfg.URL = o.url
			}
			if flags.Changed("user") {
				cfg.User = o.user
			}
			if flags.Changed("password") {
				cfg.Password = o.password
			}
			if flags.Changed("timeout") {
				cfg.Timeout = o.timeout
			}
			if flags.Changed("legacy-workspace-path") {
				cfg.LegacyWorkspacePath = o.legacy
			}
			if o.debug {
				cfg.Debug = true
			}
			if err := cfg.ResolveDefaults(); err != nil {
				return err
			}
			if o.debug {
				cfg.Log(o.log)
			}
			o.cfg = cfg
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.url, "url", "", "GeoServer base URL (overrides GEOSERVER_URL)")
	pf.StringVarP(&o.user, "user", "u", "", "GeoServer user (overrides GEOSERVER_USER)")
	pf.StringVarP(&o.password, "password", "p", "", "GeoServer password (overrides GEOSERVER_PASSWORD)")
	pf.DurationVar(&o.timeout, "timeout", 0, "HTTP timeout (overrides GEOSERVER_TIMEOUT)")
	pf.BoolVar(&o.legacy, "legacy-workspace-path", false, "Use the style name as the workspace path segment")
	pf.BoolVarP(&o.debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newPublishCmd(o))
	rootCmd.AddCommand(newUpdateCmd(o))
	rootCmd.AddCommand(newRemoveCmd(o))
	rootCmd.AddCommand(newExistsCmd(o))
	rootCmd.AddCommand(newListCmd(o))
	rootCmd.AddCommand(newGetCmd(o))

	return rootCmd
}

// withClient builds a client, runs fn under the configured timeout and
// closes the client afterwards.
func (o *rootOptions) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	c, err := o.cfg.NewClient(o.log)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), o.cfg.Timeout)
	defer cancel()
	return fn(ctx, c)
}

func readBody(cmd *cobra.Command, file string) (string, error) {
	if file == "" || file == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(b), nil
}

// reportResult prints the boolean outcome and turns false into an error so
// scripts can rely on the exit code.
func reportResult(cmd *cobra.Command, action, name string, ok bool) error {
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: false\n", action, name)
		return fmt.Errorf("%s %q: server returned a non-empty response", action, name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: true\n", action, name)
	return nil
}

func newPublishCmd(o *rootOptions) *cobra.Command {
	var name, workspace, file string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a new CSS style",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd, file)
			if err != nil {
				return err
			}
			log.Debug().
				Str("style", name).
				Str("workspace", workspace).
				Int("bytes", len(body)).
				Msg("publishing style")

			return o.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				start := time.Now()
				ok, err := c.PublishCSSStyle(ctx, body, name, workspace)
				log.Debug().Dur("elapsed", time.Since(start)).Bool("ok", ok).Msg("publish done")
				if err != nil {
					return err
				}
				return reportResult(cmd, "published", name, ok)
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Style name")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace (empty for global)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSS file (default stdin)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUpdateCmd(o *rootOptions) *cobra.Command {
	var name, workspace, file string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace the CSS body of an existing style",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd, file)
			if err != nil {
				return err
			}
			return o.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				start := time.Now()
				ok, err := c.UpdateCSSStyle(ctx, body, name, workspace)
				log.Debug().Dur("elapsed", time.Since(start)).Bool("ok", ok).Msg("update done")
				if err != nil {
					return err
				}
				return reportResult(cmd, "updated", name, ok)
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Style name")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace (empty for global)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSS file (default stdin)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newRemoveCmd(o *rootOptions) *cobra.Command {
	var name, workspace string
	var recurse, purge bool

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a style",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				ok, err := c.RemoveStyle(ctx, name, workspace, recurse, purge)
				if err != nil {
					return err
				}
				return reportResult(cmd, "removed", name, ok)
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Style name")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace (empty for global)")
	cmd.Flags().BoolVar(&recurse, "recurse", false, "Also remove references from layers")
	cmd.Flags().BoolVar(&purge, "purge", false, "Delete the underlying style file")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newExistsCmd(o *rootOptions) *cobra.Command {
	var name, workspace string

	cmd := &cobra.Command{
		Use:   "exists",
		Short: "Report whether a style exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				var (
					found bool
					err   error
				)
				if workspace == "" {
					found, err = c.StyleExists(ctx, name)
				} else {
					found, err = c.StyleExistsInWorkspace(ctx, workspace, name)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), found)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Style name")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace (empty for global)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newListCmd(o *rootOptions) *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List styles as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				refs, err := c.ListStyles(ctx, workspace)
				if err != nil {
					return err
				}
				if refs == nil {
					refs = []client.StyleRef{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(refs)
			})
		},
	}
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace (empty for global)")
	return cmd
}

func newGetCmd(o *rootOptions) *cobra.Command {
	var name, workspace string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the CSS body of a style",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				css, err := c.GetCSSStyle(ctx, name, workspace)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), css)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Style name")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace (empty for global)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
