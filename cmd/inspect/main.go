package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/identity"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/keys"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to identity.db")
	address := flag.String("address", "", "show single record detail (hex address)")
	events := flag.Int("events", 10, "number of recent events to show in detail mode")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/identity.db [--address hex] [--events N] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *address != "" {
		if err := runDetailMode(st, *address, *events, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(st, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	Address      string `json:"address"`
	Dimensions   uint8  `json:"dimensions"`
	Declarations uint32 `json:"declarations"`
	Coherence    uint64 `json:"coherence"`
	Continuity   uint64 `json:"continuity"`
	Valid        bool   `json:"valid"`
	UpdatedAt    string `json:"updated_at"`
}

func runListMode(st *store.Store, jsonOut bool) error {
	addrs, err := st.ListAddresses()
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		fmt.Fprintln(os.Stderr, "no records found")
		return nil
	}

	rows := make([]listRow, 0, len(addrs))
	for _, addr := range addrs {
		r, err := st.Load(addr)
		if err != nil {
			return err
		}
		res := r.Verify()
		rows = append(rows, listRow{
			Address:      addr.Hex(),
			Dimensions:   r.DimensionCount,
			Declarations: r.DeclarationCount(),
			Coherence:    r.CoherenceScore,
			Continuity:   r.ContinuityScore,
			Valid:        res.IsValid,
			UpdatedAt:    time.Unix(r.UpdatedAt, 0).UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %4s  %6s  %9s  %10s  %-5s  %s\n",
		"Address", "Dims", "Decls", "Coherence", "Continuity", "Valid", "Updated")
	fmt.Printf("%-12s+-%4s+-%6s+-%9s+-%10s+-%-5s+-%s\n",
		"------------", "----", "------", "---------", "----------", "-----", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-12s  %4d  %6d  %9d  %10d  %-5v  %s\n",
			shortHex(r.Address), r.Dimensions, r.Declarations,
			r.Coherence, r.Continuity, r.Valid, r.UpdatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Address      string            `json:"address"`
	Owner        string            `json:"owner"`
	Bump         uint8             `json:"bump"`
	Dimensions   []dimensionDetail `json:"dimensions"`
	LogicalTime  uint64            `json:"logical_time"`
	Declarations uint32            `json:"declarations"`
	Pivotal      uint16            `json:"pivotal"`
	Verify       identity.Result   `json:"verify"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
	Events       []eventDetail     `json:"events,omitempty"`
}

type dimensionDetail struct {
	Name      string `json:"name"`
	Weight    uint64 `json:"weight"`
	SelfModel uint64 `json:"self_model"`
}

type eventDetail struct {
	Kind      string          `json:"kind"`
	CreatedAt string          `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

func runDetailMode(st *store.Store, addrHex string, eventLimit int, jsonOut bool) error {
	addr, err := parseAddress(addrHex)
	if err != nil {
		return err
	}
	r, err := st.Load(addr)
	if err != nil {
		return err
	}

	out := detailOutput{
		Address:      r.Address.Hex(),
		Owner:        r.Owner.Hex(),
		Bump:         r.Bump,
		LogicalTime:  r.Time,
		Declarations: r.DeclarationCount(),
		Pivotal:      r.PivotalCount,
		Verify:       r.Verify(),
		CreatedAt:    time.Unix(r.CreatedAt, 0).UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    time.Unix(r.UpdatedAt, 0).UTC().Format("2006-01-02T15:04:05Z"),
	}
	for i := 0; i < int(r.DimensionCount); i++ {
		out.Dimensions = append(out.Dimensions, dimensionDetail{
			Name:      r.DimensionName(i),
			Weight:    r.Weights[i],
			SelfModel: r.SelfModel[i],
		})
	}

	evs, err := st.ListEvents(addr, eventLimit)
	if err != nil {
		return err
	}
	for _, e := range evs {
		out.Events = append(out.Events, eventDetail{
			Kind:      e.Kind,
			CreatedAt: time.Unix(e.CreatedAt, 0).UTC().Format("2006-01-02T15:04:05Z"),
			Payload:   json.RawMessage(e.PayloadJSON),
		})
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Address:      %s\n", out.Address)
	fmt.Printf("Owner:        %s\n", out.Owner)
	fmt.Printf("Bump:         %d\n", out.Bump)
	fmt.Printf("Created:      %s\n", out.CreatedAt)
	fmt.Printf("Updated:      %s\n", out.UpdatedAt)
	fmt.Printf("Logical Time: %d\n", out.LogicalTime)
	fmt.Printf("Declarations: %d\n", out.Declarations)
	fmt.Printf("Pivotal:      %d\n", out.Pivotal)
	fmt.Printf("Valid:        %v (code %d)\n", out.Verify.IsValid, out.Verify.ErrorCode)
	fmt.Printf("Coherence:    %d\n", out.Verify.CoherenceScore)
	fmt.Printf("Continuity:   %d\n", out.Verify.ContinuityScore)
	fmt.Printf("Chain Root:   %s\n", out.Verify.ChainRoot.Hex())

	fmt.Printf("\nDimensions:\n")
	fmt.Printf("  %-16s  %6s  %10s\n", "Name", "Weight", "Self Model")
	for _, d := range out.Dimensions {
		fmt.Printf("  %-16s  %6d  %10d\n", d.Name, d.Weight, d.SelfModel)
	}

	if len(out.Events) > 0 {
		fmt.Printf("\nRecent events:\n")
		for _, e := range out.Events {
			fmt.Printf("  %s  %-22s  %s\n", e.CreatedAt, e.Kind, string(e.Payload))
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func parseAddress(s string) (keys.RecordAddress, error) {
	var addr keys.RecordAddress
	b, err := hex.DecodeString(s)
	if err != nil {
		return addr, fmt.Errorf("parse address: %w", err)
	}
	if len(b) != len(addr) {
		return addr, fmt.Errorf("address must be %d hex bytes, got %d", len(addr), len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortHex(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

// #endregion output
