// Command scenegen turns a labelled room capture into fire solver input.
//
// Usage:
//
//	scenegen run      -cloud points.csv -detections dets.json [-labels map.txt] -out dir
//	scenegen render   -doc room_simulation.json -out room_simulation.fds
//	scenegen project  -cloud points.csv -out image.png
//	scenegen runs     [-id run-id] [-limit n]
//	scenegen migrate  up|down|status|force <version>
//	scenegen version
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/firescene/internal/version"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: scenegen <command> [flags]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  run       run the five-stage pipeline and write all artifacts\n")
	fmt.Fprintf(os.Stderr, "  render    render a stored scene document to solver input\n")
	fmt.Fprintf(os.Stderr, "  project   rebuild the colour image from a point table\n")
	fmt.Fprintf(os.Stderr, "  runs      list or show stored runs\n")
	fmt.Fprintf(os.Stderr, "  migrate   manage the run database schema\n")
	fmt.Fprintf(os.Stderr, "  version   print build information\n")
}

func main() {
	log.SetFlags(log.LstdFlags)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "run":
		err = runCommand(args)
	case "render":
		err = renderCommand(args)
	case "project":
		err = projectCommand(args)
	case "runs":
		err = runsCommand(args, os.Stdout)
	case "migrate":
		err = migrateCommand(args, os.Stdout)
	case "version":
		fmt.Printf("scenegen %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}
