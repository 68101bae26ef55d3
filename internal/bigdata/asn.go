package bigdata

import (
	"encoding/json"
	"fmt"
	"os"
)

type association struct {
	Products []struct {
		Members []struct {
			Expname string `json:"expname"`
		} `json:"members"`
	} `json:"products"`
}

// RawFromAsn returns the exposure names of every member of every product in
// a JSON association file, in file order.
func RawFromAsn(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read association %s: %w", path, err)
	}
	var asn association
	if err := json.Unmarshal(data, &asn); err != nil {
		return nil, fmt.Errorf("failed to parse association %s: %w", path, err)
	}

	var members []string
	for _, product := range asn.Products {
		for _, m := range product.Members {
			members = append(members, m.Expname)
		}
	}
	return members, nil
}
