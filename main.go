package main

import (
	"github.com/smartnotes/summarizer/cmd"
)

func main() {
	cmd.Execute()
}
