// Package extract walks a decoded filesystem and materializes its tree on
// the host: directories and regular files are recreated with their source
// permissions, special files are reported, and hard links become symbolic
// links to the first copy written.
package extract

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"

	v7 "github.com/v7fs/go-v7fs/filesystem/v7"
)

const dirMode = 0o774

// Options control a run.
type Options struct {
	// ListOnly walks and reports without writing anything to the host.
	ListOnly bool
}

// Extractor copies one filesystem out of an image into a host directory.
type Extractor struct {
	fs       *v7.FileSystem
	log      *logrus.Logger
	listOnly bool
	links    *linkTracker

	biggestSize uint32
	biggestPath string
}

// New returns an extractor over an opened filesystem. All progress and
// diagnostics go to the given logger.
func New(fs *v7.FileSystem, logger *logrus.Logger, opts Options) *Extractor {
	return &Extractor{
		fs:       fs,
		log:      logger,
		listOnly: opts.ListOnly,
		links:    newLinkTracker(),
	}
}

// Run extracts the whole tree under destDir. The top-level host directory
// is named after the partition, so a run against the root filesystem
// produces destDir/root. Re-running overwrites file contents in place.
func (e *Extractor) Run(destDir string) error {
	root, err := e.fs.ReadInode(v7.RootInode)
	if err != nil {
		return fmt.Errorf("could not load root inode: %w", err)
	}
	hostRoot := filepath.Join(destDir, e.fs.Partition().Name)
	if err := e.mkdir(hostRoot); err != nil {
		return err
	}
	if err := e.walk(root, "/", hostRoot); err != nil {
		return err
	}
	if e.biggestPath != "" {
		e.log.Infof("biggest file %s: %d bytes", e.biggestPath, e.biggestSize)
	}
	return nil
}

// walk handles one directory in two passes: the first lists every entry
// and materializes files and directories at this level, the second
// recurses into subdirectories. The child host directory has to exist
// before the recursion enters it, which is what forces the split.
func (e *Extractor) walk(dir *v7.Inode, imagePath, hostPath string) error {
	if !dir.IsDir() {
		return fmt.Errorf("cannot walk inode %d at %s: not a directory", dir.Number, imagePath)
	}

	entries, err := e.fs.ReadDirectory(dir)
	if err != nil {
		return err
	}

	for _, ent := range entries {
		if ent.Tombstone() {
			e.log.Debugf("tombstone in %s: %q", imagePath, ent.Name)
			continue
		}
		if ent.Name == "." || ent.Name == ".." {
			continue
		}
		child, err := e.fs.ReadInode(uint32(ent.Inode))
		if err != nil {
			return fmt.Errorf("entry %s in %s: %w", ent.Name, imagePath, err)
		}
		imageChild := path.Join(imagePath, ent.Name)
		hostChild := filepath.Join(hostPath, ent.Name)

		e.log.Infof("%5d %c %2d %8d %s", child.Number, child.TypeChar(), child.Nlink, child.Size, ent.Name)
		for _, bad := range e.fs.BadBlocks(child) {
			e.log.Warnf("BAD BLOCK %d in %s", bad, imageChild)
		}

		switch {
		case child.IsDir():
			if child.Nlink > 1 {
				if canon, seen := e.links.observe(child.Number, hostChild); seen {
					e.log.Infof("DLINK %s -> %s", imageChild, canon)
					if err := e.symlink(canon, hostChild); err != nil {
						return err
					}
					continue
				}
			}
			if err := e.mkdir(hostChild); err != nil {
				return err
			}
		case child.IsRegular():
			if child.Nlink > 1 {
				if canon, seen := e.links.observe(child.Number, hostChild); seen {
					e.log.Infof("SLINK %s -> %s", imageChild, canon)
					if err := e.symlink(canon, hostChild); err != nil {
						return err
					}
					continue
				}
				e.log.Infof("FLINK %s", imageChild)
			}
			if err := e.materialize(child, hostChild, imageChild); err != nil {
				return err
			}
			if child.Size > e.biggestSize {
				e.biggestSize = child.Size
				e.biggestPath = imageChild
			}
		default:
			e.log.Infof("SPECIAL %s", imageChild)
			if child.Nlink > 1 {
				e.links.observe(child.Number, hostChild)
			}
		}
	}

	for _, ent := range entries {
		if ent.Tombstone() || ent.Name == "." || ent.Name == ".." {
			continue
		}
		child, err := e.fs.ReadInode(uint32(ent.Inode))
		if err != nil {
			return fmt.Errorf("entry %s in %s: %w", ent.Name, imagePath, err)
		}
		if !child.IsDir() {
			continue
		}
		imageChild := path.Join(imagePath, ent.Name)
		hostChild := filepath.Join(hostPath, ent.Name)
		// a duplicate directory entry became a symlink in pass one
		if canon, ok := e.links.path(child.Number); ok && canon != hostChild {
			continue
		}
		if err := e.walk(child, imageChild, hostChild); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) mkdir(hostPath string) error {
	if e.listOnly {
		return nil
	}
	if err := os.Mkdir(hostPath, dirMode); err != nil && !os.IsExist(err) {
		return fmt.Errorf("could not create directory %s: %w", hostPath, err)
	}
	// mkdir mode is subject to the umask; force the bits we want
	if err := os.Chmod(hostPath, dirMode); err != nil {
		return fmt.Errorf("could not set mode on %s: %w", hostPath, err)
	}
	return nil
}

// symlink plants a relative symbolic link at hostPath pointing to the
// canonical copy. An existing link from an earlier run is replaced.
func (e *Extractor) symlink(canon, hostPath string) error {
	if e.listOnly {
		return nil
	}
	target, err := filepath.Rel(filepath.Dir(hostPath), canon)
	if err != nil {
		target = canon
	}
	if err := os.Remove(hostPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not replace %s: %w", hostPath, err)
	}
	if err := os.Symlink(target, hostPath); err != nil {
		return fmt.Errorf("could not create symlink %s -> %s: %w", hostPath, target, err)
	}
	return nil
}

// materialize writes one regular file. The declared inode size decides how
// many bytes come out; a block list that disagrees with it is reported.
// Extra blocks are ignored, but a list too short for the size fails the
// copy with an error.
func (e *Extractor) materialize(in *v7.Inode, hostPath, imagePath string) error {
	expected := int(in.Size+v7.BlockSize-1) / v7.BlockSize
	if expected != len(in.Blocks) {
		e.log.Warnf("inode %d: size %d wants %d blocks but the block list has %d (%s)",
			in.Number, in.Size, expected, len(in.Blocks), imagePath)
	}
	if e.listOnly {
		return nil
	}

	f, err := os.OpenFile(hostPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, in.Perm())
	if err != nil {
		return fmt.Errorf("could not create %s: %w", hostPath, err)
	}
	written, err := io.Copy(f, e.fs.FileReader(in))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("could not write %s: %w", hostPath, err)
	}
	if written != int64(in.Size) {
		return fmt.Errorf("wrote %d bytes of %s instead of %d", written, hostPath, in.Size)
	}

	// creation mode was filtered through the umask; restore the real bits
	if err := os.Chmod(hostPath, in.Perm()); err != nil {
		return fmt.Errorf("could not set mode on %s: %w", hostPath, err)
	}
	if err := os.Chtimes(hostPath, in.AccessTime, in.ModTime); err != nil {
		return fmt.Errorf("could not set times on %s: %w", hostPath, err)
	}
	e.tagSource(hostPath, in)
	return nil
}
