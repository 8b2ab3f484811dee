package cli

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"strings"
)

type trackCommand struct {
	fs        *flag.FlagSet
	baseUrl   string
	eventType string
	sessionId string
	url       string
	eventName string
	referrer  string
	userAgent string
}

func TrackCommand() Command {
	cmd := &trackCommand{
		fs: flag.NewFlagSet("track", flag.ContinueOnError),
	}

	cmd.fs.StringVar(&cmd.baseUrl, "base", baseUrlFromEnv(), "Base url of the tracking endpoint")
	cmd.fs.StringVar(&cmd.eventType, "type", "pageview", "Type of the tracking event")
	cmd.fs.StringVar(&cmd.sessionId, "session", "", "Session id of the visitor")
	cmd.fs.StringVar(&cmd.url, "url", "", "Page the event happened on")
	cmd.fs.StringVar(&cmd.eventName, "event", "", "Name of the event")
	cmd.fs.StringVar(&cmd.referrer, "referrer", "", "Referring url")
	cmd.fs.StringVar(&cmd.userAgent, "ua", "tracking-cli", "User agent reported in the event")

	return cmd
}

func (c *trackCommand) Init(args []string) error {
	return c.fs.Parse(args)
}

func (c *trackCommand) Run() error {
	data := map[string]any{"userAgent": c.userAgent}
	for key, value := range map[string]string{
		"sessionId": c.sessionId,
		"url":       c.url,
		"eventName": c.eventName,
		"referrer":  c.referrer,
	} {
		if value != "" {
			data[key] = value
		}
	}

	resBody, err := sendTrackingEvent(c.baseUrl, c.eventType, data)
	if err != nil {
		return err
	}

	fmt.Printf("Tracking event sent!\n\t%v\n", resBody["message"])
	return nil
}

func (c *trackCommand) Name() string {
	return c.fs.Name()
}

func (c *trackCommand) Description() string {
	return "Send a tracking event to the endpoint"
}

func sendTrackingEvent(baseUrl, eventType string, data map[string]any) (map[string]any, error) {
	body, err := json.Marshal(map[string]any{
		"type": eventType,
		"data": data,
	})
	if err != nil {
		return nil, err
	}

	res, err := http.Post(fmt.Sprintf("%s/track", strings.TrimRight(baseUrl, "/")), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var resBody map[string]any
	if err = json.NewDecoder(res.Body).Decode(&resBody); err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Sending tracking event failed with status %d, and body: \n%v", res.StatusCode, resBody)
	}

	return resBody, nil
}
