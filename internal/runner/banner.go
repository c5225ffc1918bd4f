package runner

import (
	"github.com/zan8in/gologger"
	"github.com/zan8in/tcpscan/pkg/config"
	"github.com/zan8in/tcpscan/pkg/log"
)

func ShowBanner() string {
	return "tcpscan"
}

func ShowUsage() string {
	return "\nUSAGE:\n   tcpscan -t example.com -p 1-1024\n   tcpscan -t 10.0.0.1,10.0.0.2 -p full -c 200 -o result.csv\n   tcpscan -T hosts.txt -oo -je\n   tcpscan -web 127.0.0.1:16868\n"
}

func ShowBanner2() {
	gologger.Print().Msgf("NAME:\n   %s - v%s\n\n", log.LogColor.Banner(ShowBanner()), config.Version)
}
