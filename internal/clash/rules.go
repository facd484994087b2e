package clash

// Mode selects the routing policy. Whitelist proxies everything not known to
// be direct; blacklist proxies only known-blocked destinations.
type Mode string

const (
	Whitelist Mode = "whitelist"
	Blacklist Mode = "blacklist"
)

// ParseMode maps the literal "blacklist" to Blacklist and everything else,
// including the empty string, to Whitelist.
func ParseMode(s string) Mode {
	if s == string(Blacklist) {
		return Blacklist
	}
	return Whitelist
}

func (m Mode) String() string {
	if m == Blacklist {
		return string(Blacklist)
	}
	return string(Whitelist)
}

var whitelistRules = []string{
	"RULE-SET,applications,DIRECT",
	"DOMAIN,clash.razord.top,DIRECT",
	"DOMAIN,yacd.haishan.me,DIRECT",
	"RULE-SET,private,DIRECT",
	"RULE-SET,reject,REJECT",
	"RULE-SET,icloud,DIRECT",
	"RULE-SET,apple,DIRECT",
	"RULE-SET,google,PROXY",
	"RULE-SET,proxy,PROXY",
	"RULE-SET,direct,DIRECT",
	"RULE-SET,lancidr,DIRECT",
	"RULE-SET,cncidr,DIRECT",
	"RULE-SET,telegramcidr,PROXY",
	"GEOIP,LAN,DIRECT",
	"GEOIP,CN,DIRECT",
	"MATCH,PROXY",
}

var blacklistRules = []string{
	"RULE-SET,applications,DIRECT",
	"DOMAIN,clash.razord.top,DIRECT",
	"DOMAIN,yacd.haishan.me,DIRECT",
	"RULE-SET,private,DIRECT",
	"RULE-SET,reject,REJECT",
	"RULE-SET,tld-not-cn,PROXY",
	"RULE-SET,gfw,PROXY",
	"RULE-SET,telegramcidr,PROXY",
	"MATCH,DIRECT",
}

// RulesFor returns a fresh copy of the rule list for mode.
func RulesFor(mode Mode) []string {
	src := whitelistRules
	if mode == Blacklist {
		src = blacklistRules
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
