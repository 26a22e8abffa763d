// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// shs computes and verifies SHA-256 digests of files or standard input in
// the style of sha256sum.
package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/shs-go/shs/sha256"
)

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

type config struct {
	Check bool `short:"c" long:"check" description:"read digest lines from the given files and verify them"`
}

// hashReader streams the contents of r through a rolling hasher and returns
// the digest rendered as 64 lowercase hex characters.
func hashReader(r io.Reader) (string, error) {
	hasher := sha256.NewHasher()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}
	digest, err := hasher.Finalize()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest[:]), nil
}

// hashFile returns the hex digest of the named file, or of standard input
// when the name is "-".
func hashFile(name string) (string, error) {
	if name == "-" {
		return hashReader(os.Stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return hashReader(f)
}

// parseDigestLine splits a "digest  name" line as produced by this tool (and
// sha256sum) into its digest and file name parts.
func parseDigestLine(line string) (digest, name string, err error) {
	const sep = "  "
	idx := strings.Index(line, sep)
	if idx < 0 {
		return "", "", errors.New("missing digest/name separator")
	}
	digest, name = line[:idx], line[idx+len(sep):]
	if len(digest) != sha256.Size*2 {
		return "", "", fmt.Errorf("digest is %d characters, want %d",
			len(digest), sha256.Size*2)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", "", fmt.Errorf("malformed digest: %w", err)
	}
	if name == "" {
		return "", "", errors.New("empty file name")
	}
	return strings.ToLower(digest), name, nil
}

// checkDigestList verifies every digest line read from r and reports the
// outcome per file on stdout.  It returns an error when any file failed to
// verify or could not be read.
func checkDigestList(r io.Reader) error {
	var failed, unreadable int
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		want, name, err := parseDigestLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		got, err := hashFile(name)
		if err != nil {
			fmt.Printf("%s: FAILED open or read\n", name)
			unreadable++
			continue
		}
		if got != want {
			fmt.Printf("%s: FAILED\n", name)
			failed++
			continue
		}
		fmt.Printf("%s: OK\n", name)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if failed > 0 || unreadable > 0 {
		return fmt.Errorf("%d computed digest(s) did not match and %d file(s) "+
			"could not be read", failed, unreadable)
	}
	return nil
}

func main() {
	var cfg config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.Usage = "[OPTIONS] [file ...]"
	args, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) {
			if e.Type != flags.ErrHelp {
				os.Exit(1)
			}
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Read standard input when no files are given.
	if len(args) == 0 {
		args = []string{"-"}
	}

	if cfg.Check {
		for _, name := range args {
			var r io.Reader = os.Stdin
			if name != "-" {
				f, err := os.Open(name)
				if err != nil {
					fatalf("%s\n", err)
				}
				defer f.Close()
				r = f
			}
			if err := checkDigestList(r); err != nil {
				fatalf("%s: %s\n", name, err)
			}
		}
		return
	}

	for _, name := range args {
		digest, err := hashFile(name)
		if err != nil {
			fatalf("%s\n", err)
		}
		fmt.Printf("%s  %s\n", digest, name)
	}
}
