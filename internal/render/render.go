// Package render produces the configuration file consumed by the CU
// workload process. Rendering is pure: no I/O, and identical inputs yield
// byte-identical output.
package render

import (
	"bytes"
	"fmt"
	"net"
	"text/template"

	"github.com/thc1006/oai-ran-cu-agent/internal/cuconfig"
	"github.com/thc1006/oai-ran-cu-agent/internal/netattach"
	"github.com/thc1006/oai-ran-cu-agent/internal/relations"
)

// ContractError reports a render call made before its inputs were complete.
// The pipeline must not render until the readiness gate has passed, so this
// error always indicates a caller bug rather than an operational condition.
type ContractError struct {
	Reason string
}

func (e *ContractError) Error() string {
	return "render: " + e.Reason
}

// Input carries everything the template needs: the validated options, the
// resolved attachments (F1 first, N3 second), the inbound core data and the
// DU's announced F1 port.
type Input struct {
	GNBName     string
	Options     *cuconfig.Config
	Attachments []netattach.Attachment
	Core        *relations.CoreNetworkData
	DUF1Port    int
}

type view struct {
	GNBName         string
	TAC             int
	MCC             string
	MNC             string
	MNCLength       int
	SST             int
	F1InterfaceName string
	F1IPAddress     string
	F1Port          int
	DUF1Port        int
	N3InterfaceName string
	N3IPAddress     string
	AMFIPAddress    string
}

// Config renders the CU configuration file content.
func Config(in Input) ([]byte, error) {
	if in.Options == nil {
		return nil, &ContractError{Reason: "options absent"}
	}
	if in.Core == nil {
		return nil, &ContractError{Reason: "core network data absent"}
	}
	if len(in.Attachments) != 2 {
		return nil, &ContractError{Reason: fmt.Sprintf("expected F1 and N3 attachments, got %d", len(in.Attachments))}
	}
	f1, n3 := in.Attachments[0], in.Attachments[1]
	f1IP, err := hostAddress(f1.IPAddress)
	if err != nil {
		return nil, &ContractError{Reason: fmt.Sprintf("f1 attachment address: %v", err)}
	}
	n3IP, err := hostAddress(n3.IPAddress)
	if err != nil {
		return nil, &ContractError{Reason: fmt.Sprintf("n3 attachment address: %v", err)}
	}

	var buf bytes.Buffer
	err = cuConf.Execute(&buf, view{
		GNBName:         in.GNBName,
		TAC:             in.Options.TAC,
		MCC:             in.Options.MCC,
		MNC:             in.Options.MNC,
		MNCLength:       in.Options.MNCLength(),
		SST:             in.Options.SST,
		F1InterfaceName: f1.Interface,
		F1IPAddress:     f1IP,
		F1Port:          in.Options.F1Port,
		DUF1Port:        in.DUF1Port,
		N3InterfaceName: n3.Interface,
		N3IPAddress:     n3IP,
		AMFIPAddress:    in.Core.IPAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("execute cu.conf template: %w", err)
	}
	return buf.Bytes(), nil
}

// hostAddress strips the prefix length from a CIDR.
func hostAddress(cidr string) (string, error) {
	ip, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return "", err
	}
	return ip.String(), nil
}

var cuConf = template.Must(template.New("cu.conf").Parse(cuConfTemplate))

const cuConfTemplate = `Active_gNBs = ( "{{ .GNBName }}");
# Asn1_verbosity, choice in: none, info, annoying
Asn1_verbosity = "none";
Num_Threads_PUSCH = 8;

gNBs =
(
 {
    ////////// Identification parameters:
    gNB_ID = 0xe00;
    gNB_name  =  "{{ .GNBName }}";

    // Tracking area code, 0x0000 and 0xfffe are reserved values
    tracking_area_code  =  {{ .TAC }};
    plmn_list = ({ mcc = {{ .MCC }}; mnc = {{ .MNC }}; mnc_length = {{ .MNCLength }}; snssaiList = ({ sst = {{ .SST }}; }) });

    nr_cellid = 12345678L;

    ////////// Physical parameters:
    tr_s_preference = "f1";

    local_s_if_name = "{{ .F1InterfaceName }}";
    local_s_address = "{{ .F1IPAddress }}";
    remote_s_address = "0.0.0.0";
    local_s_portc   = 501;
    local_s_portd   = {{ .F1Port }};
    remote_s_portc  = 500;
    remote_s_portd  = {{ .DUF1Port }};

    # ------- SCTP definitions
    SCTP :
    {
        SCTP_INSTREAMS  = 2;
        SCTP_OUTSTREAMS = 2;
    };

    ////////// AMF parameters:
    amf_ip_address = ({ ipv4 = "{{ .AMFIPAddress }}"; });

    NETWORK_INTERFACES :
    {
        GNB_INTERFACE_NAME_FOR_NG_AMF = "{{ .N3InterfaceName }}";
        GNB_IPV4_ADDRESS_FOR_NG_AMF = "{{ .N3IPAddress }}";
        GNB_INTERFACE_NAME_FOR_NGU = "{{ .N3InterfaceName }}";
        GNB_IPV4_ADDRESS_FOR_NGU = "{{ .N3IPAddress }}";
        GNB_PORT_FOR_S1U = 2152;
    };
  }
);

security = {
  ciphering_algorithms = ( "nea0" );
  integrity_algorithms = ( "nia2", "nia0" );
  drx_Timer = "ms10";
};

log_config : {
  global_log_level = "info";
  hw_log_level = "info";
  phy_log_level = "info";
  mac_log_level = "info";
  rlc_log_level = "info";
  pdcp_log_level = "info";
  rrc_log_level = "info";
  ngap_log_level = "debug";
  f1ap_log_level = "debug";
};
`
