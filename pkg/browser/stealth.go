package browser

// defaultUserAgent matches the Chromium build the launch args advertise.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// launchArgs tune a locally launched Chromium for automation on a headless
// Linux host. Fingerprint-level tuning beyond this is configuration, not
// code; identity providers mostly key off the automation-controlled blink
// feature and the webdriver navigator property.
var launchArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--no-sandbox",
	"--disable-infobars",
	"--disable-extensions",
	"--window-size=1280,720",
	"--disable-dev-shm-usage",
	"--disable-background-timer-throttling",
	"--disable-backgrounding-occluded-windows",
	"--disable-renderer-backgrounding",
	"--disable-default-apps",
	"--disable-sync",
	"--hide-scrollbars",
	"--mute-audio",
	"--no-first-run",
	"--disable-gpu",
	"--disable-background-networking",
	"--disable-hang-monitor",
	"--disable-prompt-on-repost",
	"--no-default-browser-check",
	"--password-store=basic",
	"--use-mock-keychain",
	"--force-color-profile=srgb",
}

// extraHeaders make the automated session's requests indistinguishable from
// an interactive Chrome session on Linux.
var extraHeaders = map[string]string{
	"Accept":             "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":    "en-US,en;q=0.9",
	"Cache-Control":      "no-cache",
	"Pragma":             "no-cache",
	"Sec-Ch-Ua":          `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`,
	"Sec-Ch-Ua-Mobile":   "?0",
	"Sec-Ch-Ua-Platform": `"Linux"`,
	"Sec-Fetch-Dest":     "document",
	"Sec-Fetch-Mode":     "navigate",
	"Sec-Fetch-Site":     "none",
	"Sec-Fetch-User":     "?1",
	"Upgrade-Insecure-Requests": "1",
}

// initScript hides the most common automation indicators before any page
// script runs. Applied to both substrates.
const initScript = `
Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined,
});

Object.defineProperty(navigator, 'languages', {
	get: () => ['en-US', 'en'],
});

Object.defineProperty(navigator, 'platform', {
	get: () => 'Linux x86_64',
});

Object.defineProperty(navigator, 'hardwareConcurrency', {
	get: () => 4,
});

window.chrome = {
	runtime: {},
	loadTimes: function() {},
	csi: function() {},
	app: {}
};

delete window.cdc_adoQpoasnfa76pfcZLmcfl_Array;
delete window.cdc_adoQpoasnfa76pfcZLmcfl_Promise;
delete window.cdc_adoQpoasnfa76pfcZLmcfl_Symbol;
`
