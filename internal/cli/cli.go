// Package cli implements the yolococo command surface: flag parsing, file
// I/O, and dispatch into the conversion and merge cores.
package cli

import (
	"fmt"
	"strings"
)

// Run dispatches a subcommand. The returned error is the fatal failure to
// surface to the user; nil means the command completed and reported its own
// summary.
func Run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "yolo2coco":
		return runYOLOToCOCO(args[1:])
	case "coco2yolo":
		return runCOCOToYOLO(args[1:])
	case "merge":
		return runMerge(args[1:])
	case "visualize":
		return runVisualize(args[1:])
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage() {
	fmt.Println("yolococo - YOLO/COCO annotation conversion and dataset merging")
	fmt.Println()
	fmt.Println("Usage: yolococo <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  yolo2coco    Convert YOLO txt labels to a COCO instances JSON")
	fmt.Println("  coco2yolo    Convert a COCO instances JSON to YOLO txt labels")
	fmt.Println("  merge        Merge multiple COCO datasets into one")
	fmt.Println("  visualize    Draw dataset bounding boxes onto the images")
	fmt.Println()
	fmt.Println("Run 'yolococo <command> -h' for command options.")
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
