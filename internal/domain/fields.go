package domain

// FieldNames lists the record columns in output order
var FieldNames = []string{
	"pri_cat", "sec_cat", "ter_cat", "cate_url",
	"product", "brand", "price", "release",
	"comment_counts", "evaluation", "pt_counts",
	"img_url", "pdct_url",
}

// FieldLabels maps column names to the catalog's display names
var FieldLabels = map[string]string{
	"pri_cat":        "大カテゴリ",
	"sec_cat":        "中カテゴリ",
	"ter_cat":        "小カテゴリ",
	"cate_url":       "カテゴリページURL",
	"product":        "商品名",
	"brand":          "ブランド名",
	"price":          "本体価格",
	"release":        "発売日",
	"comment_counts": "口コミ数",
	"evaluation":     "評価（星の数）",
	"pt_counts":      "pt数",
	"img_url":        "商品画像URL",
	"pdct_url":       "商品ページURL",
}

// Header returns the column header, optionally localized
func Header(localized bool) []string {
	header := make([]string, len(FieldNames))
	for i, name := range FieldNames {
		if label, ok := FieldLabels[name]; ok && localized {
			header[i] = label
			continue
		}
		header[i] = name
	}
	return header
}

// Row renders the record in FieldNames order
func (r ProductRecord) Row() []string {
	return []string{
		r.PrimaryCategory,
		r.SecondaryCategory,
		r.TertiaryCategory,
		r.CategoryURL,
		r.Product.String(),
		r.Brand.String(),
		r.Price.String(),
		r.Release.String(),
		r.CommentCount.String(),
		r.Rating.String(),
		r.PointCount.String(),
		r.ImageURL.String(),
		r.ProductURL.String(),
	}
}
