package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const DefaultTopHosts = 10

var nonWordRun = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// HostCount is a host and its number of listings.
type HostCount struct {
	HostName string `json:"host_name"`
	Listings int    `json:"listings"`
}

// HostFile is a discovered per-host extract.
type HostFile struct {
	HostName string `json:"host_name"`
	Path     string `json:"path"`
}

// SafeHostName replaces every run of non-word characters with "_". Letters outside
// ASCII count as word characters, so "José" stays intact.
func SafeHostName(host string) string {
	return nonWordRun.ReplaceAllString(host, "_")
}

// HostFileName is the extract file name for a host: host_<safe name>.csv.
func HostFileName(host string) string {
	return "host_" + SafeHostName(host) + ".csv"
}

// TopHosts ranks hosts by listing count, ties broken by name, and keeps n of them.
func TopHosts(listings []Listing, n int) []HostCount {
	counts := make(map[string]int)
	for _, listing := range listings {
		name := strings.TrimSpace(listing.HostName)
		if name == "" {
			continue
		}
		counts[name]++
	}

	ranked := make([]HostCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, HostCount{HostName: name, Listings: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Listings != ranked[j].Listings {
			return ranked[i].Listings > ranked[j].Listings
		}
		return ranked[i].HostName < ranked[j].HostName
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// DiscoverHostFiles returns the extracts that exist in dir, in host order.
func DiscoverHostFiles(dir string, hosts []HostCount) []HostFile {
	files := make([]HostFile, 0, len(hosts))
	for _, host := range hosts {
		path := filepath.Join(dir, HostFileName(host.HostName))
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, HostFile{HostName: host.HostName, Path: path})
	}
	return files
}

// LoadHostPrices concatenates the rows of every extract. Rows without a host name
// are attributed to the host the file was discovered for.
func LoadHostPrices(files []HostFile) ([]HostPrice, error) {
	var rows []HostPrice
	for _, file := range files {
		f, err := os.Open(file.Path)
		if err != nil {
			return nil, fmt.Errorf("open host file %s: %w", file.Path, err)
		}
		items, err := ReadHostPrices(f, file.HostName)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read host file %s: %w", file.Path, err)
		}
		rows = append(rows, items...)
	}
	return rows, nil
}

// ReadHostPrices decodes one host extract. Rows whose date does not parse are dropped.
func ReadHostPrices(r io.Reader, fallbackHost string) ([]HostPrice, error) {
	table, err := newCSVTable(r, "date", "price_x")
	if err != nil {
		return nil, err
	}

	items := make([]HostPrice, 0, 256)
	for {
		row, err := table.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		day, err := row.date("date")
		if err != nil {
			continue
		}
		host := row.str("host_name")
		if host == "" {
			host = fallbackHost
		}
		items = append(items, HostPrice{
			HostName: host,
			Date:     day,
			Price:    row.price("price_x"),
		})
	}
	return items, nil
}
