package deployer

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeFunctions is an in-memory FunctionAPI that records the calls it receives.
type fakeFunctions struct {
	// calls lists operation names in call order.
	calls []string
	// updateOut is returned by UpdateFunctionCode when updateErr is nil.
	updateOut *lambda.UpdateFunctionCodeOutput
	// updateErr is returned by UpdateFunctionCode.
	updateErr error
	// createOut is returned by CreateFunction when createErr is nil.
	createOut *lambda.CreateFunctionOutput
	// createErr is returned by CreateFunction.
	createErr error
	// updateIn and createIn keep the last inputs.
	updateIn *lambda.UpdateFunctionCodeInput
	createIn *lambda.CreateFunctionInput
	// state is reported by GetFunction.
	state lambdatypes.State
}

// GetFunction reports the function as active and successfully updated.
func (f *fakeFunctions) GetFunction(
	_ context.Context,
	params *lambda.GetFunctionInput,
	_ ...func(*lambda.Options),
) (*lambda.GetFunctionOutput, error) {
	f.calls = append(f.calls, "GetFunction")

	state := f.state
	if state == "" {
		state = lambdatypes.StateActive
	}

	return &lambda.GetFunctionOutput{
		Configuration: &lambdatypes.FunctionConfiguration{
			FunctionName:     params.FunctionName,
			State:            state,
			LastUpdateStatus: lambdatypes.LastUpdateStatusSuccessful,
		},
	}, nil
}

// UpdateFunctionCode records the call and returns the configured answer.
func (f *fakeFunctions) UpdateFunctionCode(
	_ context.Context,
	params *lambda.UpdateFunctionCodeInput,
	_ ...func(*lambda.Options),
) (*lambda.UpdateFunctionCodeOutput, error) {
	f.calls = append(f.calls, "UpdateFunctionCode")
	f.updateIn = params

	if f.updateErr != nil {
		return nil, f.updateErr
	}

	return f.updateOut, nil
}

// CreateFunction records the call and returns the configured answer.
func (f *fakeFunctions) CreateFunction(
	_ context.Context,
	params *lambda.CreateFunctionInput,
	_ ...func(*lambda.Options),
) (*lambda.CreateFunctionOutput, error) {
	f.calls = append(f.calls, "CreateFunction")
	f.createIn = params

	if f.createErr != nil {
		return nil, f.createErr
	}

	return f.createOut, nil
}

// fakeStore is an in-memory CodeStore.
type fakeStore struct {
	// objects maps bucket/key to uploaded bytes.
	objects map[string][]byte
	// err is returned by PutObject when set.
	err error
}

// PutObject stores the body in memory.
func (s *fakeStore) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if s.err != nil {
		return nil, s.err
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}

	s.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = body

	return &s3.PutObjectOutput{}, nil
}
