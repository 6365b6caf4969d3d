package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"collisionos/internal/domain"
	"collisionos/internal/port"
	"collisionos/internal/service"
)

const s3Scheme = "s3://"

func hasS3Arg(args []string) bool {
	for _, a := range args {
		if strings.HasPrefix(a, s3Scheme) {
			return true
		}
	}
	return false
}

// parseS3URI splits s3://bucket/prefix.
func parseS3URI(uri string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid s3 uri %q", uri)
	}
	return bucket, prefix, nil
}

// knownExtension reports whether name looks like a BMS or EMS file.
func knownExtension(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	_, ok := domain.AllowedExtensions[ext]
	return ok
}

// collectInputs expands arguments into batch inputs. Explicit files are
// always taken; directories and s3 prefixes only contribute files with a
// known estimate extension.
func collectInputs(ctx context.Context, args []string, store port.ObjectStorage, ic service.ImportContext, autoCreate bool) ([]service.ProcessFileInput, error) {
	var inputs []service.ProcessFileInput
	add := func(in service.ProcessFileInput) {
		in.AutoCreate = autoCreate
		in.UserID = ic.UserID
		in.TenantID = ic.TenantID
		inputs = append(inputs, in)
	}

	for _, arg := range args {
		if strings.HasPrefix(arg, s3Scheme) {
			if store == nil {
				return nil, domain.ErrStorageUnavailable
			}
			bucket, prefix, err := parseS3URI(arg)
			if err != nil {
				return nil, err
			}
			keys, err := store.List(ctx, bucket, prefix)
			if err != nil {
				return nil, fmt.Errorf("listing %s: %w", arg, err)
			}
			for _, key := range keys {
				if knownExtension(key) {
					add(service.ProcessFileInput{StorageBucket: bucket, StorageKey: key})
				}
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			content, err := os.ReadFile(arg)
			if err != nil {
				return nil, err
			}
			add(service.ProcessFileInput{Content: content, ImportContext: service.ImportContext{FileName: filepath.Base(arg)}})
			continue
		}

		err = filepath.WalkDir(arg, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() || !knownExtension(p) {
				return nil
			}
			content, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			add(service.ProcessFileInput{Content: content, ImportContext: service.ImportContext{FileName: entry.Name()}})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return inputs, nil
}
