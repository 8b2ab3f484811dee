package cli

import (
	"flag"
	"fmt"
	"net/http"
	"strings"
)

type preflightCommand struct {
	fs      *flag.FlagSet
	baseUrl string
	origin  string
}

func PreflightCommand() Command {
	cmd := &preflightCommand{
		fs: flag.NewFlagSet("preflight", flag.ContinueOnError),
	}

	cmd.fs.StringVar(&cmd.baseUrl, "base", baseUrlFromEnv(), "Base url of the tracking endpoint")
	cmd.fs.StringVar(&cmd.origin, "origin", "https://example.com", "Origin to send the preflight request from")

	return cmd
}

func (c *preflightCommand) Init(args []string) error {
	return c.fs.Parse(args)
}

func (c *preflightCommand) Run() error {
	headers, err := preflight(c.baseUrl, c.origin)
	if err != nil {
		return err
	}

	fmt.Println("Preflight succeeded:")
	for _, name := range corsHeaders {
		fmt.Printf("\t%s: %s\n", name, headers.Get(name))
	}
	return nil
}

func (c *preflightCommand) Name() string {
	return c.fs.Name()
}

func (c *preflightCommand) Description() string {
	return "Check the CORS preflight response of the endpoint"
}

var corsHeaders = []string{
	"Access-Control-Allow-Origin",
	"Access-Control-Allow-Headers",
	"Access-Control-Allow-Methods",
}

func preflight(baseUrl, origin string) (http.Header, error) {
	req, err := http.NewRequest(http.MethodOptions, fmt.Sprintf("%s/track", strings.TrimRight(baseUrl, "/")), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Preflight failed with status %d", res.StatusCode)
	}
	if res.Header.Get("Access-Control-Allow-Origin") == "" {
		return nil, fmt.Errorf("Preflight response is missing Access-Control-Allow-Origin")
	}

	return res.Header, nil
}
