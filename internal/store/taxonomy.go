package store

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

var (
	DefaultCategories = []string{"Funcionário", "Insumos", "Infraestrutura", "Maquinário", "Mão de Obra", "E-Social", "Outros"}
	DefaultMembers    = []string{"Vitor e Bárbara", "Sílvia", "Lucas e Maeve", "Dery", "Kim", "Ana e Luke", "Rodrigo"}
)

// SeedTaxonomy reads seed_categories.txt and seed_members.txt from dir,
// falling back to the defaults for a missing or empty file.
func SeedTaxonomy(dir string) (categories, members []string) {
	categories = readLines(filepath.Join(dir, "seed_categories.txt"))
	members = readLines(filepath.Join(dir, "seed_members.txt"))
	if len(categories) == 0 {
		categories = append([]string(nil), DefaultCategories...)
	}
	if len(members) == 0 {
		members = append([]string(nil), DefaultMembers...)
	}
	return categories, members
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return Dedupe(out)
}

// Dedupe trims names, drops blanks and repeats, and keeps input order.
func Dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
