package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerInfoField_Shapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "object", raw: `{"full_name":"A","phone":"0900"}`, want: "A"},
		{name: "string holding object", raw: `"{\"full_name\":\"B\"}"`, want: "B"},
		{name: "null", raw: `null`},
		{name: "number", raw: `42`, wantErr: true},
		{name: "array", raw: `[{"full_name":"C"}]`, wantErr: true},
		{name: "string holding garbage", raw: `"hello"`, wantErr: true},
		{name: "string holding array", raw: `"[1,2]"`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req PlaceOrderRequest
			require.NoError(t, json.Unmarshal([]byte(`{"customer_info":`+tc.raw+`}`), &req))

			if tc.want == "" {
				assert.Nil(t, req.CustomerInfo.Info)
			} else {
				require.NotNil(t, req.CustomerInfo.Info)
				assert.Equal(t, tc.want, req.CustomerInfo.Info.FullName)
			}
			assert.Equal(t, tc.wantErr, req.CustomerInfo.Err != nil)
		})
	}
}

func TestCustomerInfoField_Absent(t *testing.T) {
	t.Parallel()

	var req PlaceOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"items":[]}`), &req))
	assert.Nil(t, req.CustomerInfo.Info)
	assert.NoError(t, req.CustomerInfo.Err)
}
