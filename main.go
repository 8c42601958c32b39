package main

import "github/chapool/iao-solana/cmd"

func main() {
	cmd.Execute()
}
