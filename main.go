package main

import "github.com/assetbump/assetbump/cmd"

func main() {
	cmd.Execute()
}
