// Copyright 2026 The MeshDAT Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/meshproto/meshdat/dat"
)

// statusHandler renders the cached mappings as a plain-text table, one row
// per entry with the age of the last refresh.
func statusHandler(svc *dat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		writeCache(w, svc.Snapshot(), time.Now())
	}
}

func writeCache(w io.Writer, entries []dat.Entry, now time.Time) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Addr.Less(entries[j].Addr)
	})
	fmt.Fprintf(w, "Cached mappings: %d\n", len(entries))
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"ADDRESS", "LINK", "LAST SEEN"})
	for _, e := range entries {
		table.Append([]string{e.Addr.String(), e.Link.String(), formatAge(now.Sub(e.LastUpdate))})
	}
	table.Render()
}

// formatAge renders a duration as m:ss, the format of the cache dump.
func formatAge(age time.Duration) string {
	if age < 0 {
		age = 0
	}
	s := int(age.Seconds())
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// resolveHandler looks an address up in the local table. On a miss the
// query is replicated to the responsible candidates; a later request may
// then hit the answer another node pushed back.
func resolveHandler(svc *dat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, err := netip.ParseAddr(r.URL.Query().Get("addr"))
		if err != nil {
			http.Error(w, fmt.Sprintf("bad addr parameter: %v", err),
				http.StatusBadRequest)
			return
		}
		addr = addr.Unmap()
		if entry, ok := svc.Lookup(addr); ok {
			fmt.Fprintf(w, "%s %s\n", entry.Addr, entry.Link)
			return
		}
		if svc.Replicate(r.Context(), encodeQuery(addr), addr, dat.KindGet) {
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprintln(w, "miss, query sent")
			return
		}
		http.Error(w, "miss, no candidate reachable", http.StatusNotFound)
	}
}
