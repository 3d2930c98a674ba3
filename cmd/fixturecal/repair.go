package main

import (
	"fmt"

	"fixturecal/internal/textfix"
)

type repairCommand struct {
	Args struct {
		Dir string `positional-arg-name:"DIR" description:"Directory to scan (default: data)"`
	} `positional-args:"yes"`
}

func (c *repairCommand) Execute(_ []string) error {
	dir := c.Args.Dir
	if dir == "" {
		dir = "data"
	}

	rep, err := textfix.RepairDir(dir)
	if err != nil {
		return err
	}
	fmt.Printf("[repair] scanned=%d changed=%d\n", rep.Scanned, rep.Changed)
	return nil
}
