package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/m5trevino/trevino-war-room/internal/model"
)

// Resolver derives a stable unique id per posting. Identity must be
// deterministic across runs — it is what makes re-ingesting the same batch a
// no-op — so the resolution order is:
//
//  1. the scraper-provided key, when present
//  2. a content hash of the posting URL
//  3. a content hash of title + employer
//  4. counter + timestamp, only when a posting carries none of the above;
//     such ids are NOT stable across runs and will re-import as duplicates
//
// The zero Resolver is ready to use. Safe for concurrent use.
type Resolver struct {
	fallbacks atomic.Int64
}

// Resolve returns the id for a posting.
func (r *Resolver) Resolve(p *model.Posting) string {
	if p.Key != "" {
		return p.Key
	}
	if p.URL != "" {
		return hashID(p.URL)
	}
	title := strings.TrimSpace(p.Title)
	employer := strings.TrimSpace(p.EmployerName())
	if title != "" || employer != "" {
		return hashID(title + "|" + employer)
	}
	return fmt.Sprintf("job_%d_%d", r.fallbacks.Add(1), time.Now().Unix())
}

func hashID(s string) string {
	sum := sha256.Sum256([]byte(s))
	return "h_" + hex.EncodeToString(sum[:8])
}
