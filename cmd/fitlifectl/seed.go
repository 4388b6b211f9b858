package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/2beens/fitlife/internal/db"
	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/workouts"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout of a plans file:
//
//	workouts:
//	  - name: Legs
//	    weekdays: [1, 4]
//	    exercises:
//	      - name: Squat
//	        sets: 4
//	        reps: "8-10"
//	        load: 60
type seedFile struct {
	Workouts []seedWorkout `yaml:"workouts"`
}

type seedWorkout struct {
	Name      string         `yaml:"name"`
	Weekdays  []int          `yaml:"weekdays"`
	Exercises []seedExercise `yaml:"exercises"`
}

type seedExercise struct {
	Name  string   `yaml:"name"`
	Sets  int      `yaml:"sets"`
	Reps  string   `yaml:"reps"`
	Load  *float64 `yaml:"load"`
	Notes string   `yaml:"notes"`
}

func parseSeedFile(r io.Reader) ([]workouts.WorkoutInput, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode plans yaml: %w", err)
	}
	if len(f.Workouts) == 0 {
		return nil, fmt.Errorf("no workouts in plans file")
	}

	inputs := make([]workouts.WorkoutInput, 0, len(f.Workouts))
	for i, w := range f.Workouts {
		input := workouts.WorkoutInput{
			Name:     w.Name,
			Weekdays: w.Weekdays,
		}
		for _, e := range w.Exercises {
			input.Exercises = append(input.Exercises, workouts.ExerciseInput{
				Name:        e.Name,
				PlannedSets: e.Sets,
				PlannedReps: e.Reps,
				PlannedLoad: e.Load,
				Notes:       e.Notes,
			})
		}
		normalized, err := input.Normalize()
		if err != nil {
			return nil, fmt.Errorf("workout #%d (%s): %w", i+1, w.Name, err)
		}
		inputs = append(inputs, normalized)
	}
	return inputs, nil
}

type workoutCreator interface {
	Create(ctx context.Context, userID string, input workouts.WorkoutInput) (*workouts.Workout, error)
}

func seedWorkouts(ctx context.Context, repo workoutCreator, userID string, inputs []workouts.WorkoutInput, out io.Writer) error {
	for _, input := range inputs {
		w, err := repo.Create(ctx, userID, input)
		if err != nil {
			return fmt.Errorf("create workout %s: %w", input.Name, err)
		}
		fmt.Fprintf(out, "created workout %s [%s] with %d exercises\n", w.Name, w.ID, len(w.Exercises))
	}
	return nil
}

func seedCmd(opts *rootOptions) *cobra.Command {
	var userID, filePath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create workout plans for a user from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requirePostgres(); err != nil {
				return err
			}

			f, err := os.Open(filePath)
			if err != nil {
				return err
			}
			defer func() {
				if err := f.Close(); err != nil {
					log.Warnf("close plans file: %s", err)
				}
			}()

			inputs, err := parseSeedFile(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := db.NewDBPool(ctx, opts.dbParams())
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := workouts.NewRepo(rowstore.NewPgStore(pool))
			return seedWorkouts(ctx, repo, userID, inputs, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "id of the user owning the plans")
	cmd.Flags().StringVar(&filePath, "file", "", "path of the plans YAML file")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
