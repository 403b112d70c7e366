package trees

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"greensprint/internal/scan"
	"greensprint/internal/store"
)

const codeAttempts = 5

// newCode derives a printed tree code from random UUID bytes. Codes are the
// native prefix plus six uppercase hex characters, short enough to write on
// a tag by hand.
func newCode() string {
	id := uuid.New()
	return scan.NativeCodePrefix + strings.ToUpper(hex.EncodeToString(id[:3]))
}

// uniqueCode generates a code not yet present in the store. Collisions are
// rare at community scale but cheap to check for.
func uniqueCode(ctx context.Context, st *store.Store) (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code := newCode()
		existing, err := st.GetTreeByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unique code after %d attempts", codeAttempts)
}
