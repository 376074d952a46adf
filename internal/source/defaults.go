package source

// Defaults returns the preset feed catalog, grouped by category.
func Defaults() []Source {
	return []Source{
		// 综合新闻
		{URL: "https://www.thepaper.cn/rss_newslist.jsp", Name: "澎湃新闻", Category: "综合新闻"},
		{URL: "https://www.zaobao.com/rss/realtime/china", Name: "联合早报", Category: "综合新闻"},
		{URL: "https://www.ftchinese.com/rss/feed", Name: "FT中文网", Category: "综合新闻"},
		{URL: "https://feedx.net/rss/bbc.xml", Name: "BBC中文网", Category: "综合新闻"},

		// 国际新闻
		{URL: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml", Name: "纽约时报国际", Category: "国际新闻"},
		{URL: "https://www.theguardian.com/world/rss", Name: "卫报国际", Category: "国际新闻"},
		{URL: "https://www.aljazeera.com/xml/rss/all.xml", Name: "半岛电视台", Category: "国际新闻"},
		{URL: "https://feeds.bbci.co.uk/news/world/rss.xml", Name: "BBC国际", Category: "国际新闻"},

		// 科技新闻
		{URL: "https://www.theverge.com/rss/index.xml", Name: "The Verge", Category: "科技新闻"},
		{URL: "https://techcrunch.com/feed/", Name: "TechCrunch", Category: "科技新闻"},
		{URL: "https://feeds.arstechnica.com/arstechnica/index", Name: "Ars Technica", Category: "科技新闻"},
		{URL: "https://www.solidot.org/index.rss", Name: "Solidot", Category: "科技新闻"},
		{URL: "https://www.engadget.com/rss.xml", Name: "Engadget", Category: "科技新闻"},
	}
}

// RegisterDefaults adds the preset catalog to a registry. Presets are not
// flagged as user-added.
func RegisterDefaults(r *Registry) {
	for _, s := range Defaults() {
		// Add only fails on an empty URL, which presets never have.
		_ = r.Add(s.URL, s.Name, s.Category, false)
	}
}
