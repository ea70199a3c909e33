package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CertificatePrefix tags every certificate id.
const CertificatePrefix = "AACT-"

// Certificate closes the report. Its id is cosmetic: it is neither stored
// nor guaranteed unique.
type Certificate struct {
	ID         string
	Issued     time.Time
	ValidUntil time.Time
}

// NewCertificate issues a certificate valid for one year from now.
func NewCertificate(now time.Time) Certificate {
	return Certificate{
		ID:         CertificatePrefix + token(),
		Issued:     now,
		ValidUntil: now.AddDate(1, 0, 0),
	}
}

func token() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:8])
}
