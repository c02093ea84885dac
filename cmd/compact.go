package cmd

import (
	"fmt"
	"os"
)

// Compact compacts the lockbox to reclaim unused space
func Compact(env *Env) {
	box := env.OpenBox()
	defer box.Close()

	before := fileSize(box.Path())

	if err := box.Compact(); err != nil {
		HandleError(err)
	}

	after := fileSize(box.Path())
	fmt.Printf("Compacted %s: %s -> %s\n", box.Path(), formatSize(before), formatSize(after))
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
