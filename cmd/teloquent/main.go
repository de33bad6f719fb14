// Command teloquent scaffolds migrations and model types.
//
//	teloquent make:migration create_users_table --attributes name:string,email:string
//	teloquent make:model User --attributes age:int --relations posts:Post:hasMany
//
// Migration commands need the migrations compiled in; projects build their own
// binary around cli.NewRootCommand with their migrations registered.
package main

import (
	"fmt"
	"os"

	"github.com/teloquent/teloquent/cli"
)

var version = "dev"

func main() {
	if err := cli.NewRootCommand(cli.Options{Version: version}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
