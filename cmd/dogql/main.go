// dogql CLI - GraphQL facade over the dog.ceo REST API.
//
// Build-time version information is set via ldflags on the cli package:
//
//	go build -ldflags "-X github.com/getmockd/dogql/pkg/cli.Version=v1.0.0" ./cmd/dogql
package main

import "github.com/getmockd/dogql/pkg/cli"

func main() {
	cli.Execute()
}
