package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
	"github.com/alexanderramin/casework/internal/service"
	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

// changedString returns the flag value only when the user set it.
func changedString(fs *pflag.FlagSet, name string) (string, bool) {
	if !fs.Changed(name) {
		return "", false
	}
	v, err := fs.GetString(name)
	return v, err == nil
}

func changedFloat(fs *pflag.FlagSet, name string) (float64, bool) {
	if !fs.Changed(name) {
		return 0, false
	}
	v, err := fs.GetFloat64(name)
	return v, err == nil
}

func parseDate(flag, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: use YYYY-MM-DD", flag, s)
	}
	return &t, nil
}

// parseIndex turns a 1-based phase number into an index.
func parseIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("phase number %q out of range (task has %d phases)", arg, n)
	}
	return i - 1, nil
}

type attachment struct {
	label string
	path  string
}

// parseAttachments reads label=path pairs.
func parseAttachments(specs []string) ([]attachment, error) {
	out := make([]attachment, 0, len(specs))
	for _, s := range specs {
		label, path, ok := strings.Cut(s, "=")
		label, path = strings.TrimSpace(label), strings.TrimSpace(path)
		if !ok || label == "" || path == "" {
			return nil, fmt.Errorf("invalid --attach %q: want label=path", s)
		}
		out = append(out, attachment{label: label, path: path})
	}
	return out, nil
}

func loadPendingFile(path string) (*domain.PendingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return domain.NewPendingFile(filepath.Base(path), "", data), nil
}

// stageAttachments selects each label, attaches its file and names the
// "Other" document. Visibility applies to every attached slot.
func stageAttachments(c *service.UploadCoordinator, atts []attachment, otherName string, visible *bool) error {
	for _, a := range atts {
		if err := c.SelectDocument(a.label, true); err != nil {
			return err
		}
		if a.label == domain.OtherLabel {
			if err := c.SetCustomName(otherName); err != nil {
				return err
			}
		}
		if visible != nil {
			if err := c.SetVisibility(a.label, *visible); err != nil {
				return err
			}
		}
		f, err := loadPendingFile(a.path)
		if err != nil {
			return err
		}
		if err := c.AttachFile(a.label, f); err != nil {
			return fmt.Errorf("attaching %s: %w", a.path, err)
		}
	}
	return nil
}
