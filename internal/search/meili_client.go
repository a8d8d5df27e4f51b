// Package search đồng bộ gazetteer lên Meilisearch và tìm region theo tên
package search

import (
	"fmt"
	"strings"

	"github.com/cn-address-resolver/app/models"
)

// FilterLevelParent tạo filter theo level và parent_code; level 0 nghĩa là mọi cấp
func FilterLevelParent(level models.Level, parentCode string) string {
	var clauses []string
	if level != 0 {
		clauses = append(clauses, fmt.Sprintf("level = %d", int(level)))
	}
	if parentCode != "" {
		clauses = append(clauses, fmt.Sprintf("parent_code = %q", parentCode))
	}
	return strings.Join(clauses, " AND ")
}

// FilterVersion filter theo phiên bản gazetteer
func FilterVersion(version string) string {
	return fmt.Sprintf("gazetteer_version = %q", version)
}
