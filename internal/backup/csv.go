package backup

import (
	"encoding/csv"                   // CSV record writing
	"os"                             // File handling
	"railway_system/internal/domain" // Importing domain models
	"strconv"                        // Integer formatting

	"github.com/sirupsen/logrus" // Logging library
)

// header is written once, when the backup file is empty
var header = []string{"user_id", "username", "full_name", "age", "phone", "national_id", "address", "pincode"}

// Writer appends a flat record per registered user to a CSV file.
// It is best effort: a failed append is logged and never fails the
// registration that triggered it.
type Writer struct {
	path string
}

// NewWriter returns a backup writer for the given file path
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// AppendUser appends one user record, writing the header first if the
// file is new or empty.
func (w *Writer) AppendUser(u *domain.User) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logrus.WithFields(logrus.Fields{"path": w.path, "error": err.Error()}).Error("Failed to open user backup file")
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logrus.WithFields(logrus.Fields{"path": w.path, "error": err.Error()}).Error("Failed to stat user backup file")
		return err
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(header); err != nil {
			logrus.WithFields(logrus.Fields{"path": w.path, "error": err.Error()}).Error("Failed to write backup header")
			return err
		}
	}
	nationalID := ""
	if u.NationalID != nil {
		nationalID = *u.NationalID
	}
	record := []string{
		u.UserID,
		u.Username,
		u.FullName,
		strconv.Itoa(u.Age),
		u.Phone,
		nationalID,
		u.Address,
		u.Pincode,
	}
	if err := cw.Write(record); err != nil {
		logrus.WithFields(logrus.Fields{"path": w.path, "error": err.Error()}).Error("Failed to write backup record")
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logrus.WithFields(logrus.Fields{"path": w.path, "error": err.Error()}).Error("Failed to flush backup record")
		return err
	}
	return nil
}
