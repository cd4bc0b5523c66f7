package names

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/drobotk/vsif2vcd/utils"
)

var scenePathRegexp = regexp.MustCompile(`(?i)scenes[/\\].+?\.vcd`)

// Set holds normalized scene names: lowercase, backslash separated.
type Set map[string]struct{}

func (s Set) Add(name string) bool {
	if _, ok := s[name]; ok {
		return false
	}
	s[name] = struct{}{}
	return true
}

func (s Set) Merge(o Set) {
	for name := range o {
		s[name] = struct{}{}
	}
}

func (s Set) Sorted() []string {
	result := make([]string, 0, len(s))
	for name := range s {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Normalize converts a scene path to the form its checksum is taken of.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "/", `\`)
}

// Extract finds every scene path mentioned in data.
func Extract(data []byte) Set {
	result := make(Set)
	for _, m := range scenePathRegexp.FindAll(data, -1) {
		result.Add(Normalize(string(m)))
	}
	return result
}

func SearchFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[names] Cannot read '%s'", path)
	}
	found := Extract(data)
	utils.LogInfof("Searching %s", path)
	for _, name := range found.Sorted() {
		utils.LogInfof("\t+ %s", name)
	}
	return found, nil
}

// SearchPath gathers names from a single file or, recursively, from every
// file of a directory.
func SearchPath(path string) (Set, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, errors.Errorf("[names] %s is not a valid search path", path)
	}
	if !st.IsDir() {
		return SearchFile(path)
	}

	result := make(Set)
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		found, err := SearchFile(p)
		if err != nil {
			return err
		}
		result.Merge(found)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[names] Walking '%s'", path)
	}
	return result, nil
}

// WriteList writes one name per line, sorted.
func WriteList(w io.Writer, s Set) error {
	_, err := io.WriteString(w, strings.Join(s.Sorted(), "\n"))
	return err
}
