package main

import "github.com/netgfx/slack-jira-automation/client/cmd"

func main() {
	cmd.Execute()
}
