package registry

// DefaultFeeds returns the built-in feed list written by Seed
func DefaultFeeds() []Entry {
	return []Entry{
		{"hackernews", "https://news.ycombinator.com/rss"},
		{"hackaday", "https://hackaday.com/feed/"},
		{"cnx_software", "https://www.cnx-software.com/feed/"},
		{"guardian_editorial", "https://www.theguardian.com/profile/editorial/rss"},
		{"linuxgizmos", "https://linuxgizmos.com/feed/"},
		{"dangerousprototypes", "http://dangerousprototypes.com/blog/feed/"},
		{"bbc_news", "http://feeds.bbci.co.uk/news/world/rss.xml"},
		{"techcrunch", "https://techcrunch.com/feed/"},
		{"mashable", "https://mashable.com/feeds/rss/all"},
		{"wired", "https://www.wired.com/feed/rss"},
		{"gizmodo", "https://gizmodo.com/rss"},
		{"theverge", "https://www.theverge.com/rss/index.xml"},
		{"engadget", "https://www.engadget.com/rss.xml"},
		{"cnetnews", "https://www.cnet.com/rss/news/"},
		{"zdnet", "https://www.zdnet.com/news/rss.xml"},
		{"techplanet", "https://techplanet.today/feed"},
		{"spyopinion", "https://www.spyopinion.com/feed/"},
		{"techhive", "https://www.techhive.com/feed"},
		{"sladhdot", "https://rss.slashdot.org/Slashdot/slashdotMain"},
		{"lifehacker", "https://lifehacker.com/feed/rss"},
		{"itsecurityguru", "https://www.itsecurityguru.org/feed/"},
		{"cyberscoop", "https://cyberscoop.com/feed/"},
		{"gizmodo_security", "https://gizmodo.com/tag/security/rss"},
		{"google_security", "https://security.googleblog.com/feeds/posts/default?alt=rss"},
		{"grahamcluleys", "http://feeds.feedburner.com/GrahamCluleysBlog"},
		{"packetstorm_security", "https://rss.packetstormsecurity.com/news/"},
		{"securityaffairs", "https://securityaffairs.co/feed"},
		{"securityweek", "http://feeds.feedburner.com/Securityweek"},
		{"theregister_security", "https://www.theregister.com/security/headlines.atom"},
		{"threatpost", "https://threatpost.com/feed/"},
		{"trendmicro_security", "http://feeds.trendmicro.com/TrendMicroSimplySecurity"},
		{"thezdi", "https://www.thezdi.com/blog?format=rss"},
	}
}
