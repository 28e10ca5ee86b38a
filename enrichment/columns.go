package enrichment

import "strings"

// geneColumnCandidates are header names recognized as the gene column, in
// preference order.
var geneColumnCandidates = []string{
	"gene", "genes", "symbol", "gene_symbol", "gene symbol", "genesymbol",
	"gene_name", "gene name", "gene_id", "gene id", "geneid",
	"ensembl", "ensembl_id", "ensembl_gene_id", "entrez", "entrez_id", "entrezgene", "id",
}

// DetectGeneColumn returns the index of the most likely gene column or -1.
func DetectGeneColumn(header []string) int {
	for _, cand := range geneColumnCandidates {
		for i, col := range header {
			if strings.EqualFold(NormalizeIdentifier(col), cand) {
				return i
			}
		}
	}
	return -1
}
