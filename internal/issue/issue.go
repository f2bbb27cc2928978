// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	SecretMissingId
	WalletKeyInvalidId
	ImageLoadFailedId
	PinataAuthFailedId
	PinningFailedId
	ToolNotFoundId
	RetriesExhaustedId
	MintKeypairNotFoundId
	InvalidTokenRequestId
	ArchiveFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation for the failing component
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

mintkit could not read or validate its configuration.

## Search locations (in order of precedence):
1. The file passed with --config
2. mintkit.toml in the current directory
3. mintkit.toml in the user config directory

## Things you can try:
- Print the effective configuration:
~~~
$ mintkit config show
~~~
- Write a fresh default file and edit it:
~~~
$ mintkit config init
~~~
- Check MINTKIT_* environment variables for typos`,
	}

	secretMissingIssue = &Issue{
		id: SecretMissingId,
		mdMsg: `
# Secret not set!

A run needs the wallet key and the Pinata token.

## Things you can try:
- Add them to the .env file next to where you run mintkit:
~~~
WALLET_PRIVATE_KEY=<base58 secret key>
YOUR_PINATA_JWT=<pinata JWT>
~~~
- Or export them in your shell before running mintkit`,
		extLinks: []HttpLink{"https://docs.pinata.cloud/account-management/api-keys"},
	}

	walletKeyInvalidIssue = &Issue{
		id: WalletKeyInvalidId,
		mdMsg: `
# Wallet key is invalid!

WALLET_PRIVATE_KEY must be the base58 encoding of the 64-byte secret key
exported by your wallet.

## Things you can try:
- Re-export the key from your wallet and paste it without quotes or spaces
- Convert it explicitly to check it decodes:
~~~
$ mintkit keypair
~~~`,
	}

	imageLoadFailedIssue = &Issue{
		id: ImageLoadFailedId,
		mdMsg: `
# Image could not be loaded!

The token image must be a PNG, JPEG, GIF, BMP or TIFF file.

## Things you can try:
- Check the path passed as the image argument
- Re-save the file with an image editor if it is truncated`,
	}

	pinataAuthFailedIssue = &Issue{
		id: PinataAuthFailedId,
		mdMsg: `
# Pinata rejected the request!

The pinning service answered with a client error, usually a bad or expired
token.

## Things you can try:
- Create a new API key with pinFileToIPFS and pinJSONToIPFS scopes
- Update YOUR_PINATA_JWT and run again`,
		extLinks: []HttpLink{"https://docs.pinata.cloud/account-management/api-keys"},
	}

	pinningFailedIssue = &Issue{
		id: PinningFailedId,
		mdMsg: `
# Pinning failed!

Uploading to IPFS through Pinata failed after every retry.

## Things you can try:
- Check your network connection
- Check the Pinata status page and retry later
- Raise retry.pin.max_attempts in mintkit.toml`,
		extLinks: []HttpLink{"https://status.pinata.cloud"},
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Solana tool not found!

mintkit drives the solana, solana-keygen and spl-token command line tools.
At least one of them is not on your PATH.

## Things you can try:
- Install the Solana tool suite and spl-token:
~~~
$ sh -c "$(curl -sSfL https://release.anza.xyz/stable/install)"
$ cargo install spl-token-cli
~~~
- Open a new shell so PATH is refreshed`,
		extLinks: []HttpLink{"https://docs.anza.xyz/cli/install"},
	}

	retriesExhaustedIssue = &Issue{
		id: RetriesExhaustedId,
		mdMsg: `
# A token step kept failing!

A Solana command failed on every attempt. The last error output is shown
above.

## Things you can try:
- Make sure the wallet holds enough SOL for fees and rent
- Switch cluster.url to a less congested RPC endpoint
- Raise the matching retry.* policy in mintkit.toml
- The artifacts directory keeps the mint keypair so you can resume by hand`,
	}

	mintKeypairNotFoundIssue = &Issue{
		id: MintKeypairNotFoundId,
		mdMsg: `
# Mint keypair not found!

solana-keygen grind finished but no keypair file with the configured prefix
was found in the working directory.

## Things you can try:
- Check cluster.mint_prefix only uses base58 characters
- Run mintkit from a writable directory`,
	}

	invalidTokenRequestIssue = &Issue{
		id: InvalidTokenRequestId,
		mdMsg: `
# Invalid token request!

The token name, symbol and description must be non-empty and the amount must
be a positive whole number.

## Example:
~~~
$ mintkit create "My Token" MTK ./logo.png 1000000 "A token for my community"
~~~`,
	}

	archiveFailedIssue = &Issue{
		id: ArchiveFailedId,
		mdMsg: `
# Artifacts could not be archived!

The token run finished but some files could not be moved into the artifacts
directory. They are still in the working directory.

## Things you can try:
- Check free disk space and permissions of paths.archive_root`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		secretMissingIssue.Id():       secretMissingIssue,
		walletKeyInvalidIssue.Id():    walletKeyInvalidIssue,
		imageLoadFailedIssue.Id():     imageLoadFailedIssue,
		pinataAuthFailedIssue.Id():    pinataAuthFailedIssue,
		pinningFailedIssue.Id():       pinningFailedIssue,
		toolNotFoundIssue.Id():        toolNotFoundIssue,
		retriesExhaustedIssue.Id():    retriesExhaustedIssue,
		mintKeypairNotFoundIssue.Id(): mintKeypairNotFoundIssue,
		invalidTokenRequestIssue.Id(): invalidTokenRequestIssue,
		archiveFailedIssue.Id():       archiveFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
