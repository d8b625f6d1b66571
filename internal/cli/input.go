package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"eventadmin/internal/client"
	"eventadmin/internal/modules/events"
)

// promptConfirmer reads a y/N answer for every question.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// assignments turns key=value pairs into JSON members. Booleans and the
// image list are typed by key; "guest=null" clears the guest.
func assignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", pair)
		}
		switch key {
		case "is_paid", "is_online", "is_private":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = b
		case "image_urls":
			urls := []string{}
			for _, u := range strings.Split(value, ",") {
				if u = strings.TrimSpace(u); u != "" {
					urls = append(urls, u)
				}
			}
			out[key] = urls
		case "guest":
			if value == "null" {
				out[key] = nil
				continue
			}
			out[key] = value
		default:
			out[key] = value
		}
	}
	return out, nil
}

// mergeValues overlays a JSON file and then key=value pairs on base.
func mergeValues(base events.FormValues, file string, pairs []string) (events.FormValues, error) {
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return base, err
		}
		if err := json.Unmarshal(raw, &base); err != nil {
			return base, fmt.Errorf("%s: %w", file, err)
		}
	}
	if len(pairs) == 0 {
		return base, nil
	}

	set, err := assignments(pairs)
	if err != nil {
		return base, err
	}
	if v, ok := set["guest"]; ok && v == nil {
		set["guest"] = ""
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return base, err
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&base); err != nil {
		return base, err
	}
	return base, nil
}

func readMedia(banner string, images []string) (client.Media, error) {
	var m client.Media
	if banner != "" {
		f, err := readLocal(banner)
		if err != nil {
			return m, err
		}
		m.Banner = []client.LocalFile{f}
	}
	for _, path := range images {
		f, err := readLocal(path)
		if err != nil {
			return m, err
		}
		m.Images = append(m.Images, f)
	}
	return m, nil
}

func readLocal(path string) (client.LocalFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return client.LocalFile{}, err
	}
	return client.LocalFile{Name: filepath.Base(path), Content: content}, nil
}
