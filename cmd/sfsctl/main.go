// Command sfsctl is a small command-line front end over package sfs.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/urfave/cli/v2"

	sfs "github.com/brackenbridge/sfscore"
	"github.com/brackenbridge/sfscore/blockdev"
)

func main() {
	app := cli.App{
		Usage: "Manage sfscore disk images",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Create or wipe an sfscore image",
				Action:    formatImage,
				ArgsUsage: "IMAGE_PATH",
			},
			{
				Name:      "ls",
				Usage:     "List the files on an image",
				Action:    listFiles,
				ArgsUsage: "IMAGE_PATH",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "csv", Usage: "emit the listing as CSV instead of a table"},
				},
			},
			{
				Name:      "put",
				Usage:     "Copy a local file onto the image",
				Action:    putFile,
				ArgsUsage: "IMAGE_PATH LOCAL_PATH [SFS_NAME]",
			},
			{
				Name:      "cat",
				Usage:     "Print the contents of a file on the image",
				Action:    catFile,
				ArgsUsage: "IMAGE_PATH SFS_NAME",
			},
			{
				Name:      "rm",
				Usage:     "Remove a file from the image",
				Action:    removeFile,
				ArgsUsage: "IMAGE_PATH SFS_NAME",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("sfsctl: %s", err.Error())
	}
}

// listingRow is one line of `sfsctl ls --csv` output.
type listingRow struct {
	Name       string `csv:"name"`
	SizeBytes  int    `csv:"size_bytes"`
	InodeIndex int    `csv:"inode_index"`
}

func mountImage(path string) (*sfs.FileSystem, error) {
	stream, err := blockdev.OpenFile(path, false)
	if err != nil {
		return nil, err
	}
	return sfs.Mount(stream, sfs.DefaultGeometry())
}

func formatImage(c *cli.Context) error {
	path := c.Args().Get(0)
	if path == "" {
		return fmt.Errorf("missing IMAGE_PATH")
	}

	stream, err := blockdev.OpenFile(path, true)
	if err != nil {
		return err
	}

	fs, err := sfs.Format(stream, sfs.DefaultGeometry())
	if err != nil {
		return err
	}
	return fs.Flush()
}

func listFiles(c *cli.Context) error {
	path := c.Args().Get(0)
	if path == "" {
		return fmt.Errorf("missing IMAGE_PATH")
	}

	fs, err := mountImage(path)
	if err != nil {
		return err
	}

	fs.Dir.ResetEnumeration()
	var rows []listingRow
	for {
		name, ok := fs.GetNextFileName()
		if !ok {
			break
		}
		rows = append(rows, listingRow{
			Name:       name,
			SizeBytes:  fs.GetFileSize(name),
			InodeIndex: fs.Dir.Entries[fs.Dir.FindByName(name)].InodeIndex,
		})
	}

	if c.Bool("csv") {
		out, err := gocsv.MarshalString(&rows)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	for _, row := range rows {
		fmt.Printf("%-20s %8d bytes\n", row.Name, row.SizeBytes)
	}
	return nil
}

func putFile(c *cli.Context) error {
	imagePath := c.Args().Get(0)
	localPath := c.Args().Get(1)
	name := c.Args().Get(2)
	if name == "" {
		name = localPath
	}
	if imagePath == "" || localPath == "" {
		return fmt.Errorf("usage: put IMAGE_PATH LOCAL_PATH [SFS_NAME]")
	}

	fs, err := mountImage(imagePath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}

	handle := fs.Fopen(name)
	if handle < 0 {
		return fmt.Errorf("fopen %q: %w", name, fs.LastError())
	}
	if n := fs.Fwrite(handle, data, len(data)); n < 0 {
		return fmt.Errorf("fwrite %q: %w", name, fs.LastError())
	}
	if fs.Fclose(handle) != 0 {
		return fmt.Errorf("fclose %q: %w", name, fs.LastError())
	}
	return nil
}

func catFile(c *cli.Context) error {
	imagePath := c.Args().Get(0)
	name := c.Args().Get(1)
	if imagePath == "" || name == "" {
		return fmt.Errorf("usage: cat IMAGE_PATH SFS_NAME")
	}

	fs, err := mountImage(imagePath)
	if err != nil {
		return err
	}

	handle := fs.Fopen(name)
	if handle < 0 {
		return fmt.Errorf("fopen %q: %w", name, fs.LastError())
	}

	size := fs.GetFileSize(name)
	if size > 0 {
		if fs.Fseek(handle, 0) != 0 {
			return fmt.Errorf("fseek %q: %w", name, fs.LastError())
		}
	}

	buf := make([]byte, size)
	if n := fs.Fread(handle, buf, size); n < 0 {
		return fmt.Errorf("fread %q: %w", name, fs.LastError())
	}

	os.Stdout.Write(buf)
	return fs.Flush()
}

func removeFile(c *cli.Context) error {
	imagePath := c.Args().Get(0)
	name := c.Args().Get(1)
	if imagePath == "" || name == "" {
		return fmt.Errorf("usage: rm IMAGE_PATH SFS_NAME")
	}

	fs, err := mountImage(imagePath)
	if err != nil {
		return err
	}

	if fs.Remove(name) != 0 {
		return fmt.Errorf("remove %q: %w", name, fs.LastError())
	}
	return fs.Flush()
}
