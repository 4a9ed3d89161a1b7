package main

import "github.com/frahmantamala/access-admin/cmd"

func main() {
	cmd.Execute()
}
