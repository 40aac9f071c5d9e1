/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yiqifeiyang/ntpsec/ntp/control"
	"github.com/yiqifeiyang/ntpsec/ntp/mode6"
)

var peersWithVars bool

func peerVar(p *mode6.Peer, name string) string {
	if p.Variables == nil {
		return ""
	}
	v, ok := p.Variables.Get(name)
	if !ok {
		return ""
	}
	return v.String()
}

// flashString decodes the peer's flash variable into its flasher names
func flashString(p *mode6.Peer) string {
	if p.Variables == nil {
		return ""
	}
	v, ok := p.Variables.Get("flash")
	if !ok {
		return ""
	}
	return strings.Join(control.ReadFlashStatusWord(uint16(v.Int())), " ")
}

func selectionString(sel uint8) string {
	name := control.PeerSelect[sel&0x7]
	switch sel {
	case 6, 7:
		return color.GreenString(name)
	case 4, 5:
		return color.YellowString(name)
	default:
		return name
	}
}

func printPeers(peers []*mode6.Peer) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetColWidth(20)
	header := []string{"assoc", "status", "selection", "event", "reach"}
	if peersWithVars {
		header = append(header, "srcadr", "stratum", "offset", "delay", "jitter", "flash")
	}
	table.SetHeader(header)
	for _, p := range peers {
		psw := control.ReadPeerStatusWord(p.Status)
		reach := "no"
		if psw.PeerStatus.Reachable {
			reach = "yes"
		}
		row := []string{
			fmt.Sprintf("%d", p.AssocID),
			fmt.Sprintf("0x%04x", p.Status),
			selectionString(psw.PeerSelection),
			fmt.Sprintf("%d", psw.PeerEventCode),
			reach,
		}
		if peersWithVars {
			row = append(row,
				peerVar(p, "srcadr"),
				peerVar(p, "stratum"),
				peerVar(p, "offset"),
				peerVar(p, "delay"),
				peerVar(p, "jitter"),
				flashString(p),
			)
		}
		table.Append(row)
	}
	table.Render()
}

func init() {
	RootCmd.AddCommand(peersCmd)
	peersCmd.Flags().BoolVarP(&peersWithVars, "long", "l", false, "also fetch variables for every peer")
}

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Print the server's associations with their status words",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		s, err := OpenSession()
		if err != nil {
			log.Fatal(err)
		}
		defer s.Close()
		peers, err := s.ReadStat(0)
		if err != nil {
			log.Fatal(err)
		}
		if peersWithVars {
			for _, p := range peers {
				if err := p.ReadVars(s); err != nil {
					log.Errorf("fetching variables for associd=%d: %v", p.AssocID, err)
				}
			}
		}
		printPeers(peers)
	},
}
