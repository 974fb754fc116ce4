package transfer

import (
	"context"
	"fmt"
	"path/filepath"

	"shuttle/internal/remote"
	"shuttle/internal/shorten"
)

// plan describes where one remote entry lands locally, including any
// renames forced by the path-length ceiling.
type plan struct {
	localName   string
	localPath   string
	filenameMap map[string]string
}

// planLocalPath decides the local destination for an entry, shortening names
// when the combined path would exceed maxLen. Returns an error when no
// shortening can bring the path under the ceiling; the caller skips the
// entry rather than produce a path the filesystem may reject.
func planLocalPath(ctx context.Context, namer shorten.Namer, incomingDir string, entry remote.Entry, maxLen int) (plan, error) {
	name := entry.Name
	full := filepath.Join(incomingDir, name)
	if maxLen <= 0 || len(full) <= maxLen {
		return plan{localName: name, localPath: full}, nil
	}

	// Budget for the name itself: ceiling minus the dir prefix and separator.
	budget := maxLen - len(incomingDir) - 1
	var (
		shortened string
		err       error
	)
	if entry.IsDir {
		shortened, err = namer.SuggestShortDirname(ctx, name, budget)
	} else {
		shortened, err = namer.SuggestShortFilename(ctx, name, budget)
	}
	if err != nil {
		return plan{}, fmt.Errorf("path %q exceeds %d characters and cannot be shortened: %w", full, maxLen, err)
	}

	full = filepath.Join(incomingDir, shortened)
	if len(full) > maxLen {
		return plan{}, fmt.Errorf("path %q still exceeds %d characters after shortening", full, maxLen)
	}
	return plan{localName: shortened, localPath: full}, nil
}

// planDirContents builds the per-file rename map for a directory transfer.
// Files whose landed path would break the ceiling get shortened names; a
// file that cannot be shortened fails the whole directory plan.
func planDirContents(ctx context.Context, namer shorten.Namer, client remote.Client, policy remote.RetryPolicy, entry remote.Entry, p plan, maxLen int) (plan, error) {
	if maxLen <= 0 {
		return p, nil
	}

	var children []remote.Entry
	err := remote.WithRetry(ctx, policy, client, func() error {
		var listErr error
		children, listErr = client.ListDirRecursive(ctx, entry.Path)
		return listErr
	})
	if err != nil {
		return plan{}, err
	}

	for _, child := range children {
		if child.IsDir {
			continue
		}
		// Worst case assumes the file sits directly under the local root;
		// nested files land deeper but relative depth mirrors the remote.
		rel, relErr := relativeDepth(entry.Path, child.Path)
		if relErr != nil {
			return plan{}, relErr
		}
		landed := filepath.Join(p.localPath, rel, child.Name)
		if len(landed) <= maxLen {
			continue
		}
		budget := maxLen - len(filepath.Join(p.localPath, rel)) - 1
		shortened, shortErr := namer.SuggestShortFilename(ctx, child.Name, budget)
		if shortErr != nil {
			return plan{}, fmt.Errorf("file %q in %q cannot be shortened under %d characters: %w",
				child.Name, entry.Name, maxLen, shortErr)
		}
		if p.filenameMap == nil {
			p.filenameMap = make(map[string]string)
		}
		p.filenameMap[child.Path] = shortened
	}
	return p, nil
}

// relativeDepth returns the child's directory path relative to the remote
// root being transferred, excluding the filename itself.
func relativeDepth(root, childPath string) (string, error) {
	rel, err := filepath.Rel(root, filepath.Dir(childPath))
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}
