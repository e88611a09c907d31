package cmd

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/etnz/checkbook/api"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr    string
	origins string
	advise  bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the checkbook over HTTP" }
func (*serveCmd) Usage() string {
	return `cbook serve [-addr <addr>] [-origins <origin,...>] [-advise]

  Serves the JSON API used by front ends and bank webhooks. Requests need the
  CHECKBOOK_API_TOKEN bearer token when it is set.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, overrides the configuration")
	f.StringVar(&c.origins, "origins", "", "Comma separated CORS origins")
	f.BoolVar(&c.advise, "advise", false, "Ask the AI advisor about unmatched bank transactions")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, c.advise)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	addr := a.cfg.Addr
	if c.addr != "" {
		addr = c.addr
	}
	var origins []string
	for _, o := range strings.Split(c.origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	handler := api.NewRouter(a.store, api.Options{
		Token:          a.cfg.APIToken,
		AllowedOrigins: origins,
		Logger:         a.log,
	})
	if err := api.Serve(ctx, addr, handler, a.log); err != nil {
		return fail("Error: %v", err)
	}
	return subcommands.ExitSuccess
}
