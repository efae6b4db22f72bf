package relations

import (
	"context"
)

// FakeExchange is an in-memory Exchange for tests. Publish calls are all
// recorded; the returned write flag compares against the last recorded
// payload, mirroring the dedupe contract.
type FakeExchange struct {
	Core       map[string]string
	CoreErr    error
	F1Requirer map[string]string

	PublishedF1        []F1Data
	PublishedIdentity  []GNBIdentity
	PublishF1Err       error
	PublishIdentityErr error
}

var _ Exchange = (*FakeExchange)(nil)

func (f *FakeExchange) CoreNetworkData(context.Context) (map[string]string, error) {
	if f.CoreErr != nil {
		return nil, f.CoreErr
	}
	if f.Core == nil {
		return map[string]string{}, nil
	}
	return f.Core, nil
}

func (f *FakeExchange) F1RequirerData(context.Context) (map[string]string, error) {
	if f.F1Requirer == nil {
		return map[string]string{}, nil
	}
	return f.F1Requirer, nil
}

func (f *FakeExchange) PublishF1(_ context.Context, data F1Data) (bool, error) {
	if f.PublishF1Err != nil {
		return false, f.PublishF1Err
	}
	wrote := len(f.PublishedF1) == 0 || f.PublishedF1[len(f.PublishedF1)-1] != data
	f.PublishedF1 = append(f.PublishedF1, data)
	return wrote, nil
}

func (f *FakeExchange) PublishGNBIdentity(_ context.Context, id GNBIdentity) (bool, error) {
	if f.PublishIdentityErr != nil {
		return false, f.PublishIdentityErr
	}
	wrote := len(f.PublishedIdentity) == 0 || f.PublishedIdentity[len(f.PublishedIdentity)-1] != id
	f.PublishedIdentity = append(f.PublishedIdentity, id)
	return wrote, nil
}
