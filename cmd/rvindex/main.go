// Command rvindex is a thin CLI over the index package: build, update,
// resolve, find, and ls.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/armatools/rvtk/index"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "resolve":
		err = runResolve(os.Args[2:])
	case "find":
		err = runFind(os.Args[2:])
	case "ls":
		err = runLs(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("rvindex: %v", err)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: rvindex <command> [flags]

Commands:
  build    Scan PBO roots and write a fresh index database
  update   Incrementally re-index a database against current roots
  resolve  Resolve a virtual path to its archive and entry name
  find     Search the index for entries matching a glob pattern
  ls       List a virtual directory's subdirectories and files

Run "rvindex <command> -h" for flags.
`)
}

// rootFlags registers the -primary/-workshop/-custom/-legacy-ofp/
// -legacy-arma1/-legacy-arma2 repeatable root flags shared by build
// and update, matching a3db's -arma3/-workshop/-ofp/-arma1/-arma2.
type rootFlags struct {
	primary, workshop, custom           stringList
	legacyOFP, legacyArma1, legacyArma2 stringList
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func registerRootFlags(fs *flag.FlagSet) *rootFlags {
	rf := &rootFlags{}
	fs.Var(&rf.primary, "primary", "primary game data directory (repeatable)")
	fs.Var(&rf.workshop, "workshop", "workshop/mod directory (repeatable)")
	fs.Var(&rf.custom, "custom", "custom content directory (repeatable)")
	fs.Var(&rf.legacyOFP, "legacy-ofp", "OFP/Cold War Assault directory (repeatable)")
	fs.Var(&rf.legacyArma1, "legacy-arma1", "Armed Assault directory (repeatable)")
	fs.Var(&rf.legacyArma2, "legacy-arma2", "Arma 2 directory (repeatable)")
	return rf
}

func (rf *rootFlags) roots() []index.Root {
	var roots []index.Root
	add := func(paths stringList, source index.Source) {
		for _, p := range paths {
			roots = append(roots, index.Root{Path: p, Source: source})
		}
	}
	add(rf.primary, index.SourcePrimary)
	add(rf.workshop, index.SourceWorkshop)
	add(rf.custom, index.SourceCustom)
	add(rf.legacyOFP, index.SourceLegacyOFP)
	add(rf.legacyArma1, index.SourceLegacyArma1)
	add(rf.legacyArma2, index.SourceLegacyArma2)
	return roots
}

func stderrProgress(ev index.ProgressEvent) {
	switch ev.Phase {
	case "discovery":
		fmt.Fprintln(os.Stderr, ev.Message)
	case "warning":
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", ev.ArchivePath, ev.Message)
	case "archive":
		fmt.Fprintf(os.Stderr, "\r[%d/%d] %s", ev.ArchiveIndex, ev.ArchiveTotal, ev.ArchivePath)
	case "commit":
		fmt.Fprintf(os.Stderr, "\n%s\n", ev.Message)
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	db := fs.String("db", "", "output database path (required)")
	onDemand := fs.Bool("ondemand", false, "skip eager P3D/PAA/audio metadata parsing")
	rf := registerRootFlags(fs)
	fs.Parse(args)

	if *db == "" {
		return fmt.Errorf("-db is required")
	}
	roots := rf.roots()
	if len(roots) == 0 {
		return fmt.Errorf("no roots given: use -primary, -workshop, -custom, -legacy-ofp, -legacy-arma1, or -legacy-arma2")
	}

	result, err := index.Build(*db, roots, index.BuildOptions{OnDemandMetadata: *onDemand}, stderrProgress)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\nIndexed %d archives, %d files, %d models, %d textures, %d audio files\n",
		result.ArchiveCount, result.FileCount, result.ModelCount, result.TextureCount, result.AudioCount)
	if info, err := os.Stat(*db); err == nil {
		fmt.Fprintf(os.Stderr, "Wrote %s (%s)\n", *db, humanize.Bytes(uint64(info.Size())))
	}
	return nil
}

func runUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	db := fs.String("db", "", "database path (required)")
	onDemand := fs.Bool("ondemand", false, "skip eager P3D/PAA/audio metadata parsing")
	rf := registerRootFlags(fs)
	fs.Parse(args)

	if *db == "" {
		return fmt.Errorf("-db is required")
	}
	roots := rf.roots()
	if len(roots) == 0 {
		return fmt.Errorf("no roots given")
	}

	if _, err := os.Stat(*db); os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "no existing database, doing a full build")
		return runBuild(args)
	}

	result, err := index.Update(*db, roots, index.BuildOptions{OnDemandMetadata: *onDemand}, stderrProgress)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\nAdded %d, updated %d, removed %d archives (%d files, %d models, %d textures, %d audio)\n",
		result.Added, result.Updated, result.Removed,
		result.FileCount, result.ModelCount, result.TextureCount, result.AudioCount)
	return nil
}

func openDB(path string) (*index.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("-db is required")
	}
	return index.Open(path)
}

func runResolve(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	db := fs.String("db", "", "database path (required)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: rvindex resolve -db <path> <virtual-path>")
	}

	d, err := openDB(*db)
	if err != nil {
		return err
	}
	defer d.Close()

	resolver, err := d.Resolver()
	if err != nil {
		return err
	}
	res, err := resolver.Resolve(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("archive:  %s\n", res.ArchivePath)
	fmt.Printf("prefix:   %s\n", res.Prefix)
	fmt.Printf("entry:    %s\n", res.EntryName)
	return nil
}

func runFind(args []string) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	db := fs.String("db", "", "database path (required)")
	source := fs.String("source", "", "restrict to one archive source")
	limit := fs.Int("limit", 0, "maximum results (0 = unbounded)")
	offset := fs.Int("offset", 0, "result offset")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: rvindex find -db <path> <pattern>")
	}

	d, err := openDB(*db)
	if err != nil {
		return err
	}
	defer d.Close()

	var sourceFilter *index.Source
	if *source != "" {
		s := index.Source(*source)
		sourceFilter = &s
	}

	results, err := d.Find(fs.Arg(0), sourceFilter, *limit, *offset)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\t%s\n", r.ArchivePath, r.EntryPath, humanize.Bytes(uint64(r.DataSize)))
	}
	fmt.Fprintf(os.Stderr, "%d matches\n", len(results))
	return nil
}

func runLs(args []string) error {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	db := fs.String("db", "", "database path (required)")
	limit := fs.Int("limit", 0, "maximum results (0 = unbounded)")
	offset := fs.Int("offset", 0, "result offset")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: rvindex ls -db <path> <virtual-directory>")
	}

	d, err := openDB(*db)
	if err != nil {
		return err
	}
	defer d.Close()

	entries, err := d.ListDir(fs.Arg(0), *limit, *offset)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir {
			fmt.Printf("%s/\n", e.Name)
			continue
		}
		fmt.Printf("%s\t%s\n", e.Name, humanize.Bytes(uint64(e.File.DataSize)))
	}
	return nil
}
