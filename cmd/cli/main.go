package main

import (
	"github.com/crucial707/dtl-policy/cmd/cli/auth"
	"github.com/crucial707/dtl-policy/cmd/cli/policies"
	"github.com/crucial707/dtl-policy/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	policies.InitPolicy(rootCmd)

	root.Execute()
}
