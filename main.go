// SPDX-License-Identifier: GPL-3.0-or-later

package main

import "github.com/probekit/dnsping/cmd"

func main() {
	cmd.Execute()
}
